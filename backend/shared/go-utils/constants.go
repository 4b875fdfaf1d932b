package utils

const (
	OrganizationName                      = "Estate CRM"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	// Header used by internal callers that are not behind the JWT middleware.
	TenantHeader = "X-Tenant-ID"
)
