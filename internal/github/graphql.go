package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// graphqlURL derives the GraphQL endpoint from the REST base URL. GitHub
// Enterprise serves REST under /api/v3 and GraphQL under /api/graphql.
func (c *Client) graphqlURL() string {
	base := strings.TrimSuffix(c.BaseURL, "/")
	if strings.HasSuffix(base, "/api/v3") {
		return strings.TrimSuffix(base, "/v3") + "/graphql"
	}
	return base + "/graphql"
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// GraphQLError reports errors returned in a 200 GraphQL response.
type GraphQLError struct {
	Messages []string
	// NotFound is set when every error is of type NOT_FOUND.
	NotFound bool
}

func (e *GraphQLError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

// doGraphQL runs query and decodes its data into out.
func (c *Client) doGraphQL(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	respBody, _, err := c.doRequest(ctx, http.MethodPost, c.graphqlURL(), graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	var resp graphqlResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("failed to parse graphql response: %w", err)
	}
	if len(resp.Errors) > 0 {
		gqlErr := &GraphQLError{NotFound: true}
		for _, e := range resp.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
			if e.Type != "NOT_FOUND" {
				gqlErr.NotFound = false
			}
		}
		return gqlErr
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse graphql data: %w", err)
	}
	return nil
}

const ownerProjectsQuery = `query($login: String!, $cursor: String) {
  repositoryOwner(login: $login) {
    id
    ... on ProjectV2Owner {
      projectsV2(first: 100, after: $cursor) {
        nodes { id number title url }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`

type ownerProjectsData struct {
	RepositoryOwner *struct {
		ID         string `json:"id"`
		ProjectsV2 struct {
			Nodes    []Project `json:"nodes"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"projectsV2"`
	} `json:"repositoryOwner"`
}

// FindProject returns the owner's project titled title, or nil if there is none.
func (c *Client) FindProject(ctx context.Context, owner, title string) (*Project, error) {
	vars := map[string]interface{}{"login": owner}
	for page := 0; page < MaxPages; page++ {
		var data ownerProjectsData
		if err := c.doGraphQL(ctx, ownerProjectsQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("failed to list projects for %s: %w", owner, err)
		}
		if data.RepositoryOwner == nil {
			return nil, fmt.Errorf("owner %q not found", owner)
		}
		for _, p := range data.RepositoryOwner.ProjectsV2.Nodes {
			if p.Title == title {
				found := p
				return &found, nil
			}
		}
		info := data.RepositoryOwner.ProjectsV2.PageInfo
		if !info.HasNextPage {
			return nil, nil
		}
		vars["cursor"] = info.EndCursor
	}
	return nil, fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)
}

const ownerIDQuery = `query($login: String!) { repositoryOwner(login: $login) { id } }`

// OwnerID returns the GraphQL node ID of a user or organization.
func (c *Client) OwnerID(ctx context.Context, login string) (string, error) {
	var data struct {
		RepositoryOwner *struct {
			ID string `json:"id"`
		} `json:"repositoryOwner"`
	}
	if err := c.doGraphQL(ctx, ownerIDQuery, map[string]interface{}{"login": login}, &data); err != nil {
		return "", fmt.Errorf("failed to resolve owner %s: %w", login, err)
	}
	if data.RepositoryOwner == nil {
		return "", fmt.Errorf("owner %q not found", login)
	}
	return data.RepositoryOwner.ID, nil
}

const createProjectMutation = `mutation($ownerId: ID!, $title: String!) {
  createProjectV2(input: {ownerId: $ownerId, title: $title}) {
    projectV2 { id number title url }
  }
}`

// CreateProject creates a Projects v2 board owned by owner.
func (c *Client) CreateProject(ctx context.Context, owner, title string) (*Project, error) {
	ownerID, err := c.OwnerID(ctx, owner)
	if err != nil {
		return nil, err
	}

	var data struct {
		CreateProjectV2 struct {
			ProjectV2 Project `json:"projectV2"`
		} `json:"createProjectV2"`
	}
	vars := map[string]interface{}{"ownerId": ownerID, "title": title}
	if err := c.doGraphQL(ctx, createProjectMutation, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to create project %q: %w", title, err)
	}
	p := data.CreateProjectV2.ProjectV2
	return &p, nil
}

const addProjectItemMutation = `mutation($projectId: ID!, $contentId: ID!) {
  addProjectV2ItemById(input: {projectId: $projectId, contentId: $contentId}) {
    item { id }
  }
}`

// AddProjectItem adds the issue with node ID contentID to the project and
// returns the new item ID.
func (c *Client) AddProjectItem(ctx context.Context, projectID, contentID string) (string, error) {
	var data struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	vars := map[string]interface{}{"projectId": projectID, "contentId": contentID}
	if err := c.doGraphQL(ctx, addProjectItemMutation, vars, &data); err != nil {
		return "", fmt.Errorf("failed to add item to project: %w", err)
	}
	return data.AddProjectV2ItemByID.Item.ID, nil
}
