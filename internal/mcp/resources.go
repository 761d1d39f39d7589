package mcp

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Resource URIs.
const (
	DriversResourceURI = "poleposition://drivers"
	RacesResourceURI   = "poleposition://races"
)

// registerResources registers the reference listings as MCP resources so
// clients can load valid driver and race names into context up front.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         DriversResourceURI,
		Name:        "poleposition-drivers",
		Description: "Driver codes, full names and teams accepted by the driver arguments of every tool.",
		MIMEType:    "text/markdown",
	}, s.handleDriversResource)

	s.server.AddResource(&sdk.Resource{
		URI:         RacesResourceURI,
		Name:        "poleposition-races",
		Description: "The season calendar with the exact race names accepted by the race arguments.",
		MIMEType:    "text/markdown",
	}, s.handleRacesResource)
}

func (s *Server) handleDriversResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	var sb strings.Builder
	sb.WriteString("# Drivers\n\n")
	sb.WriteString("| Code | Name | Team |\n|---|---|---|\n")
	for _, d := range s.engine.Drivers() {
		team := d.Team
		if team == "" {
			team = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", d.Code, d.Name, team)
	}

	return markdownResult(DriversResourceURI, sb.String()), nil
}

func (s *Server) handleRacesResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	var sb strings.Builder
	sb.WriteString("# Races\n\n")
	sb.WriteString("Use the full name exactly as listed.\n\n")
	for _, r := range s.engine.Races() {
		fmt.Fprintf(&sb, "%d. %s\n", r.Round, r.Name)
	}

	return markdownResult(RacesResourceURI, sb.String()), nil
}

func markdownResult(uri, text string) *sdk.ReadResourceResult {
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     text,
			},
		},
	}
}
