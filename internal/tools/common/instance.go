package common

// GetInstanceFromArgs extracts the Vikunja instance name from request
// arguments, defaulting to "default".
//
// Priority order:
//  1. Explicit "instance" argument in request
//  2. "default"
func GetInstanceFromArgs(args map[string]interface{}) string {
	if instanceVal, ok := args["instance"].(string); ok && instanceVal != "" {
		return instanceVal
	}
	return "default"
}
