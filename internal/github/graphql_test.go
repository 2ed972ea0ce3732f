package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGraphQLURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://api.github.com", "https://api.github.com/graphql"},
		{"https://api.github.com/", "https://api.github.com/graphql"},
		{"https://ghe.example.com/api/v3", "https://ghe.example.com/api/graphql"},
		{"https://ghe.example.com/api/v3/", "https://ghe.example.com/api/graphql"},
	}
	for _, tt := range tests {
		c := NewClient("t", "o", "r").WithBaseURL(tt.base)
		if got := c.graphqlURL(); got != tt.want {
			t.Errorf("graphqlURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

// graphqlServer answers GraphQL requests with handle's result for the decoded
// request.
func graphqlServer(t *testing.T, handle func(req graphqlRequest) interface{}) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/graphql" {
			t.Errorf("request = %s %s, want POST /graphql", r.Method, r.URL.Path)
		}
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(handle(req))
	}))
	t.Cleanup(server.Close)
	return server
}

func projectsPage(nodes []Project, next string) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"repositoryOwner": map[string]interface{}{
				"id": "OWNER_1",
				"projectsV2": map[string]interface{}{
					"nodes":    nodes,
					"pageInfo": map[string]interface{}{"hasNextPage": next != "", "endCursor": next},
				},
			},
		},
	}
}

func TestFindProject(t *testing.T) {
	var cursors []interface{}
	server := graphqlServer(t, func(req graphqlRequest) interface{} {
		cursors = append(cursors, req.Variables["cursor"])
		if req.Variables["cursor"] == nil {
			return projectsPage([]Project{{ID: "P1", Number: 1, Title: "Other"}}, "c1")
		}
		return projectsPage([]Project{{ID: "P2", Number: 2, Title: "Roadmap", URL: "https://github.com/orgs/acme/projects/2"}}, "")
	})

	client := NewClient("token", "acme", "repo").WithBaseURL(server.URL)
	p, err := client.FindProject(context.Background(), "acme", "Roadmap")
	if err != nil {
		t.Fatalf("FindProject() error = %v", err)
	}
	if p == nil || p.ID != "P2" || p.Number != 2 {
		t.Fatalf("FindProject() = %+v, want P2", p)
	}
	if len(cursors) != 2 || cursors[1] != "c1" {
		t.Errorf("cursors = %v, want [<nil> c1]", cursors)
	}

	missing, err := client.FindProject(context.Background(), "acme", "Nope")
	if err != nil || missing != nil {
		t.Errorf("FindProject(missing) = %v, %v, want nil, nil", missing, err)
	}
}

func TestFindProject_UnknownOwner(t *testing.T) {
	server := graphqlServer(t, func(graphqlRequest) interface{} {
		return map[string]interface{}{"data": map[string]interface{}{"repositoryOwner": nil}}
	})

	client := NewClient("token", "ghost", "repo").WithBaseURL(server.URL)
	if _, err := client.FindProject(context.Background(), "ghost", "Roadmap"); err == nil {
		t.Fatal("FindProject() error = nil, want owner not found")
	}
}

func TestDoGraphQL_Errors(t *testing.T) {
	server := graphqlServer(t, func(graphqlRequest) interface{} {
		return map[string]interface{}{
			"errors": []map[string]string{{"type": "NOT_FOUND", "message": "Could not resolve to a node"}},
		}
	})

	client := NewClient("token", "acme", "repo").WithBaseURL(server.URL)
	_, err := client.OwnerID(context.Background(), "acme")

	var gqlErr *GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Fatalf("error = %v, want *GraphQLError", err)
	}
	if !gqlErr.NotFound {
		t.Error("NotFound = false, want true")
	}
	if !strings.Contains(err.Error(), "Could not resolve") {
		t.Errorf("error = %v, want message included", err)
	}
}

func TestCreateProjectAndAddItem(t *testing.T) {
	var ops []string
	server := graphqlServer(t, func(req graphqlRequest) interface{} {
		switch {
		case strings.Contains(req.Query, "createProjectV2"):
			ops = append(ops, "create")
			if req.Variables["ownerId"] != "OWNER_1" || req.Variables["title"] != "Roadmap" {
				t.Errorf("create variables = %v", req.Variables)
			}
			return map[string]interface{}{"data": map[string]interface{}{
				"createProjectV2": map[string]interface{}{
					"projectV2": Project{ID: "P9", Number: 9, Title: "Roadmap"},
				},
			}}
		case strings.Contains(req.Query, "addProjectV2ItemById"):
			ops = append(ops, "add")
			if req.Variables["projectId"] != "P9" || req.Variables["contentId"] != "I_42" {
				t.Errorf("add variables = %v", req.Variables)
			}
			return map[string]interface{}{"data": map[string]interface{}{
				"addProjectV2ItemById": map[string]interface{}{"item": map[string]string{"id": "ITEM_1"}},
			}}
		default:
			ops = append(ops, "owner")
			return map[string]interface{}{"data": map[string]interface{}{
				"repositoryOwner": map[string]string{"id": "OWNER_1"},
			}}
		}
	})

	client := NewClient("token", "acme", "repo").WithBaseURL(server.URL)
	ctx := context.Background()

	p, err := client.CreateProject(ctx, "acme", "Roadmap")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if p.ID != "P9" {
		t.Errorf("CreateProject() = %+v", p)
	}

	itemID, err := client.AddProjectItem(ctx, p.ID, "I_42")
	if err != nil || itemID != "ITEM_1" {
		t.Errorf("AddProjectItem() = %q, %v", itemID, err)
	}
	if strings.Join(ops, ",") != "owner,create,add" {
		t.Errorf("operations = %v", ops)
	}
}
