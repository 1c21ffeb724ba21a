package sapo

// Scope is an OAuth permission requested during authorization.
type Scope string

const (
	ScopeReadContent      Scope = "read_content"
	ScopeWriteContent     Scope = "write_content"
	ScopeReadThemes       Scope = "read_themes"
	ScopeWriteThemes      Scope = "write_themes"
	ScopeReadProducts     Scope = "read_products"
	ScopeWriteProducts    Scope = "write_products"
	ScopeReadCustomers    Scope = "read_customers"
	ScopeWriteCustomers   Scope = "write_customers"
	ScopeReadOrders       Scope = "read_orders"
	ScopeWriteOrders      Scope = "write_orders"
	ScopeReadScriptTags   Scope = "read_script_tags"
	ScopeWriteScriptTags  Scope = "write_script_tags"
	ScopeReadPriceRules   Scope = "read_price_rules"
	ScopeWritePriceRules  Scope = "write_price_rules"
	ScopeReadDraftOrders  Scope = "read_draft_orders"
	ScopeWriteDraftOrders Scope = "write_draft_orders"
	ScopeReadCollections  Scope = "read_collections"
	ScopeWriteCollections Scope = "write_collections"
)
