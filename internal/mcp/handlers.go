package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/poleposition/internal/logging"
	"github.com/nvandessel/poleposition/internal/query"
	"github.com/nvandessel/poleposition/internal/ratelimit"
	"github.com/nvandessel/poleposition/internal/tools"
)

// registerTools registers every query tool with the server. Descriptions
// come from the shared tool catalogue.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        tools.ChampionshipStandings,
		Description: tools.Description(tools.ChampionshipStandings),
	}, s.handleChampionshipStandings)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        tools.ConstructorStandings,
		Description: tools.Description(tools.ConstructorStandings),
	}, s.handleConstructorStandings)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        tools.TitleContenders,
		Description: tools.Description(tools.TitleContenders),
	}, s.handleTitleContenders)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        tools.DriverProfile,
		Description: tools.Description(tools.DriverProfile),
	}, s.handleDriverProfile)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        tools.CompareDrivers,
		Description: tools.Description(tools.CompareDrivers),
	}, s.handleCompareDrivers)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        tools.RaceProbabilities,
		Description: tools.Description(tools.RaceProbabilities),
	}, s.handleRaceProbabilities)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        tools.RacePrediction,
		Description: tools.Description(tools.RacePrediction),
	}, s.handleRacePrediction)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        tools.DriverCalendar,
		Description: tools.Description(tools.DriverCalendar),
	}, s.handleDriverCalendar)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        tools.ListDrivers,
		Description: tools.Description(tools.ListDrivers),
	}, s.handleListDrivers)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        tools.ListRaces,
		Description: tools.Description(tools.ListRaces),
	}, s.handleListRaces)
}

// toolError adds the valid choices to not-found errors so an agent can retry
// with a correct name. The original error stays in the chain.
func toolError(err error) error {
	nfs := query.NotFoundErrors(err)
	if len(nfs) == 0 {
		return err
	}
	var hints []string
	seen := map[query.Kind]bool{}
	for _, nf := range nfs {
		if seen[nf.Kind] {
			continue
		}
		seen[nf.Kind] = true
		hints = append(hints, fmt.Sprintf("available %ss: %s", nf.Kind, strings.Join(nf.Available, ", ")))
	}
	return fmt.Errorf("%w (%s)", err, strings.Join(hints, "; "))
}

// begin checks the tool's rate limit and traces its arguments.
func (s *Server) begin(ctx context.Context, name string, params map[string]any) error {
	s.logger.Log(ctx, logging.LevelTrace, "tool call", "tool", name, "args", params)
	return ratelimit.CheckLimit(s.toolLimiters, name)
}

func (s *Server) handleChampionshipStandings(ctx context.Context, req *sdk.CallToolRequest, args EmptyInput) (_ *sdk.CallToolResult, _ query.Standings, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(tools.ChampionshipStandings, start, retErr, sanitizeToolParams(map[string]any{}), "mcp")
	}()

	if err := s.begin(ctx, tools.ChampionshipStandings, nil); err != nil {
		return nil, query.Standings{}, err
	}

	return nil, s.engine.DriverStandings(), nil
}

func (s *Server) handleConstructorStandings(ctx context.Context, req *sdk.CallToolRequest, args EmptyInput) (_ *sdk.CallToolResult, _ query.ConstructorStandings, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(tools.ConstructorStandings, start, retErr, sanitizeToolParams(map[string]any{}), "mcp")
	}()

	if err := s.begin(ctx, tools.ConstructorStandings, nil); err != nil {
		return nil, query.ConstructorStandings{}, err
	}

	return nil, s.engine.ConstructorStandings(), nil
}

func (s *Server) handleTitleContenders(ctx context.Context, req *sdk.CallToolRequest, args EmptyInput) (_ *sdk.CallToolResult, _ query.Contenders, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(tools.TitleContenders, start, retErr, sanitizeToolParams(map[string]any{}), "mcp")
	}()

	if err := s.begin(ctx, tools.TitleContenders, nil); err != nil {
		return nil, query.Contenders{}, err
	}

	return nil, s.engine.TitleContenders(), nil
}

func (s *Server) handleDriverProfile(ctx context.Context, req *sdk.CallToolRequest, args DriverInput) (_ *sdk.CallToolResult, _ query.DriverProfile, retErr error) {
	start := time.Now()
	params := map[string]any{"driver": args.Driver}
	defer func() {
		s.auditTool(tools.DriverProfile, start, retErr, sanitizeToolParams(params), "mcp")
	}()

	if err := s.begin(ctx, tools.DriverProfile, params); err != nil {
		return nil, query.DriverProfile{}, err
	}

	profile, err := s.engine.DriverProfile(args.Driver)
	if err != nil {
		return nil, query.DriverProfile{}, toolError(err)
	}
	return nil, *profile, nil
}

func (s *Server) handleCompareDrivers(ctx context.Context, req *sdk.CallToolRequest, args CompareDriversInput) (_ *sdk.CallToolResult, _ query.Comparison, retErr error) {
	start := time.Now()
	params := map[string]any{"driver1": args.Driver1, "driver2": args.Driver2}
	defer func() {
		s.auditTool(tools.CompareDrivers, start, retErr, sanitizeToolParams(params), "mcp")
	}()

	if err := s.begin(ctx, tools.CompareDrivers, params); err != nil {
		return nil, query.Comparison{}, err
	}

	cmp, err := s.engine.CompareDrivers(args.Driver1, args.Driver2)
	if err != nil {
		return nil, query.Comparison{}, toolError(err)
	}
	return nil, *cmp, nil
}

func (s *Server) handleRaceProbabilities(ctx context.Context, req *sdk.CallToolRequest, args RaceInput) (_ *sdk.CallToolResult, _ query.RaceProbabilities, retErr error) {
	start := time.Now()
	params := map[string]any{"race": args.Race}
	defer func() {
		s.auditTool(tools.RaceProbabilities, start, retErr, sanitizeToolParams(params), "mcp")
	}()

	if err := s.begin(ctx, tools.RaceProbabilities, params); err != nil {
		return nil, query.RaceProbabilities{}, err
	}

	probs, err := s.engine.RaceWinnerProbabilities(args.Race)
	if err != nil {
		return nil, query.RaceProbabilities{}, toolError(err)
	}
	return nil, *probs, nil
}

func (s *Server) handleRacePrediction(ctx context.Context, req *sdk.CallToolRequest, args RacePredictionInput) (_ *sdk.CallToolResult, _ query.Prediction, retErr error) {
	start := time.Now()
	params := map[string]any{"driver": args.Driver, "race": args.Race}
	defer func() {
		s.auditTool(tools.RacePrediction, start, retErr, sanitizeToolParams(params), "mcp")
	}()

	if err := s.begin(ctx, tools.RacePrediction, params); err != nil {
		return nil, query.Prediction{}, err
	}

	pred, err := s.engine.RacePrediction(args.Driver, args.Race)
	if err != nil {
		return nil, query.Prediction{}, toolError(err)
	}
	return nil, *pred, nil
}

func (s *Server) handleDriverCalendar(ctx context.Context, req *sdk.CallToolRequest, args DriverInput) (_ *sdk.CallToolResult, _ query.Calendar, retErr error) {
	start := time.Now()
	params := map[string]any{"driver": args.Driver}
	defer func() {
		s.auditTool(tools.DriverCalendar, start, retErr, sanitizeToolParams(params), "mcp")
	}()

	if err := s.begin(ctx, tools.DriverCalendar, params); err != nil {
		return nil, query.Calendar{}, err
	}

	cal, err := s.engine.DriverCalendar(args.Driver)
	if err != nil {
		return nil, query.Calendar{}, toolError(err)
	}
	return nil, *cal, nil
}

func (s *Server) handleListDrivers(ctx context.Context, req *sdk.CallToolRequest, args EmptyInput) (_ *sdk.CallToolResult, _ tools.DriversResult, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(tools.ListDrivers, start, retErr, sanitizeToolParams(map[string]any{}), "mcp")
	}()

	if err := s.begin(ctx, tools.ListDrivers, nil); err != nil {
		return nil, tools.DriversResult{}, err
	}

	return nil, tools.DriversResult{Drivers: s.engine.Drivers()}, nil
}

func (s *Server) handleListRaces(ctx context.Context, req *sdk.CallToolRequest, args EmptyInput) (_ *sdk.CallToolResult, _ tools.RacesResult, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(tools.ListRaces, start, retErr, sanitizeToolParams(map[string]any{}), "mcp")
	}()

	if err := s.begin(ctx, tools.ListRaces, nil); err != nil {
		return nil, tools.RacesResult{}, err
	}

	return nil, tools.RacesResult{Races: s.engine.Races()}, nil
}
