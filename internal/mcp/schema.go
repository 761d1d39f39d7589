package mcp

// Inputs for the query tools. Outputs are the query result types, so MCP
// clients and the HTTP API see the same shapes.

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// DriverInput is the input of single-driver tools.
type DriverInput struct {
	Driver string `json:"driver" jsonschema:"Driver code (VER) or name (Verstappen)"`
}

// CompareDriversInput is the input of compare_drivers.
type CompareDriversInput struct {
	Driver1 string `json:"driver1" jsonschema:"First driver, as a code or name"`
	Driver2 string `json:"driver2" jsonschema:"Second driver, as a code or name"`
}

// RaceInput is the input of race_probabilities.
type RaceInput struct {
	Race string `json:"race" jsonschema:"Full Grand Prix name, e.g. Monaco Grand Prix"`
}

// RacePredictionInput is the input of race_prediction.
type RacePredictionInput struct {
	Driver string `json:"driver" jsonschema:"Driver code (VER) or name (Verstappen)"`
	Race   string `json:"race" jsonschema:"Full Grand Prix name, e.g. Monaco Grand Prix"`
}
