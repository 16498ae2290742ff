package parameter

type SaveRequest struct {
	ParamKey    string `json:"paramKey"`
	ParamValue  string `json:"paramValue"`
	ParamType   string `json:"paramType"`
	Description string `json:"description"`
}

// PublicParameters maps key to value for the login page.
type PublicParameters map[string]string
