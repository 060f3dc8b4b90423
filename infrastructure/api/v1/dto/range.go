package dto

import "github.com/helixml/numrange/domain/numrange"

// RangeResponse is the outcome of generating one range.
type RangeResponse struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	OK     bool    `json:"ok"`
	Kind   string  `json:"kind,omitempty"`
	Result string  `json:"result"`
}

// NewRangeResponse converts a result. Result holds the text surfaced to
// requesters, so failures start with "Error:" or "Unexpected error:".
func NewRangeResponse(start, end float64, result numrange.Result) RangeResponse {
	resp := RangeResponse{
		Start:  start,
		End:    end,
		OK:     result.OK(),
		Result: result.String(),
	}
	if !result.OK() {
		resp.Kind = result.Kind().String()
	}
	return resp
}
