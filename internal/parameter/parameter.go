package parameter

import (
	"time"

	parameterDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/parameter"
)

const (
	TypeText    = "text"
	TypeImage   = "image"
	TypeBoolean = "boolean"
)

type Parameter struct {
	ID          int64     `json:"id"`
	ParamKey    string    `json:"paramKey"`
	ParamValue  string    `json:"paramValue"`
	ParamType   string    `json:"paramType"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Public reports whether the parameter may be served to anonymous clients.
func (p *Parameter) Public() bool {
	return p.ParamType == TypeText || p.ParamType == TypeBoolean
}

func ToDataModel(p *Parameter) *parameterDatamodel.AppParameter {
	return &parameterDatamodel.AppParameter{
		ID:          p.ID,
		ParamKey:    p.ParamKey,
		ParamValue:  p.ParamValue,
		ParamType:   p.ParamType,
		Description: p.Description,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModel(p *parameterDatamodel.AppParameter) *Parameter {
	return &Parameter{
		ID:          p.ID,
		ParamKey:    p.ParamKey,
		ParamValue:  p.ParamValue,
		ParamType:   p.ParamType,
		Description: p.Description,
		UpdatedAt:   p.UpdatedAt,
	}
}
