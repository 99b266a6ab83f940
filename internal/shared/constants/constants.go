package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Context keys
	ContextKeyAdvisorID = "advisor_id"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableCreditAccounts         = "credit_accounts"
	TableCreditAssignments      = "credit_assignments"
	TablePurchaseHistory        = "purchase_history"
	TableRecurringSubscriptions = "recurring_credit_subscriptions"
	TableCreditPlans            = "credit_plans"
	TableStartupEntitlements    = "startup_entitlements"

	// Payment gateways
	GatewayRazorpay = "razorpay"
	GatewayPayPal   = "paypal"

	// Entitlement tier granted by one credit
	EntitlementTierPremium = "premium"

	// Grant length for a single credit
	GrantMonths = 1
)
