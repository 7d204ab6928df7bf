package domain

// Country is a reference entity supplied by the reference-data provider.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// State is a reference entity filtered by its parent country's code.
type State struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
