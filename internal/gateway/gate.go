package gateway

import "github.com/ratd/webaction-gateway/internal/domain"

// ExportAuthGate enforces the truth table of:
//
//	web-export | require-whisk-auth | authenticated | Result
//	false      | —                  | —             | 404 (not exported)
//	true       | false              | —             | pass
//	true       | true               | true          | pass
//	true       | true               | false         | 401
func ExportAuthGate(action domain.Action, authenticated bool) *Reject {
	if !action.WebExport() {
		return notFound("action is not exported as a web action")
	}
	if action.RequireWhiskAuth() && !authenticated {
		return unauthorized("authentication required")
	}
	return nil
}
