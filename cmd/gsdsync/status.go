package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gsdsync/internal/config"
	"github.com/steveyegge/gsdsync/internal/github"
	"github.com/steveyegge/gsdsync/internal/tracker"
	"github.com/steveyegge/gsdsync/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "setup",
	Short:   "Show GitHub configuration",
	Long:    "Show the repository, API endpoint and token gsdsync would use, and whether the configuration is complete.",
	Run: func(cmd *cobra.Command, args []string) {
		st := loadStatus()
		if jsonOutput {
			outputJSON(st)
			return
		}

		fmt.Println(ui.RenderHeader("GitHub"))
		fmt.Printf("  Repository: %s\n", orNotSet(st.Repository))
		fmt.Printf("  API URL:    %s\n", st.APIURL)
		fmt.Printf("  Token:      %s\n", orNotSet(st.Token))
		if st.ConfigFile != "" {
			fmt.Printf("  Config:     %s\n", st.ConfigFile)
		}
		if st.Board != "" {
			fmt.Printf("  Board:      %s\n", st.Board)
		}
		fmt.Println()
		if st.Error != "" {
			fmt.Printf("%s %s\n", ui.RenderFail(ui.IconFail), st.Error)
			return
		}
		fmt.Printf("%s %s\n", ui.RenderPass(ui.IconPass), "Configuration OK")
	},
}

type statusInfo struct {
	Repository string `json:"repository,omitempty"`
	APIURL     string `json:"api_url"`
	Token      string `json:"token,omitempty"`
	ConfigFile string `json:"config_file,omitempty"`
	Board      string `json:"board,omitempty"`
	Valid      bool   `json:"valid"`
	Error      string `json:"error,omitempty"`
}

func loadStatus() statusInfo {
	cfg := tracker.NewConfig("github", config.Store{})
	st := statusInfo{
		APIURL:     cfg.Get(tracker.CommonConfig.APIURL),
		Token:      maskToken(cfg.Get(tracker.CommonConfig.Token)),
		ConfigFile: config.ConfigFileUsed(),
	}
	if st.APIURL == "" {
		st.APIURL = github.DefaultAPIEndpoint
	}

	gh := &github.Tracker{}
	err := gh.Init(getRootContext(), cfg)
	if err == nil {
		err = gh.Validate()
	}
	if err != nil {
		st.Error = err.Error()
		return st
	}

	c := gh.Client()
	st.Repository = c.Owner + "/" + c.Repo
	if st.Token == "" {
		st.Token = maskToken(c.Token)
	}
	st.Board = config.GetBoardSettings().BoardName(c.Repo)
	st.Valid = true
	return st
}

// maskToken keeps the first and last four characters of a token.
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

func orNotSet(s string) string {
	if s == "" {
		return ui.RenderMuted("(not set)")
	}
	return s
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
