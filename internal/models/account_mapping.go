package models

// AccountMapping maps a raw ledger classification to a canonical account
// name. Many classifications may point to the same account.
type AccountMapping struct {
	Scope          string `json:"empresa" yaml:"scope"`
	Classification string `json:"classificacao" yaml:"classification"`
	Account        string `json:"conta" yaml:"account"`
}
