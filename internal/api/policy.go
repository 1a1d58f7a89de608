package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
)

// AuthMode says whether an operation needs a verified caller.
type AuthMode int

// Authentication requirements.
const (
	// Public operations ignore credentials entirely.
	Public AuthMode = iota
	// Optional operations accept a caller but never require one.
	Optional
	// Required operations reject requests without a verified caller.
	Required
)

// ParamIn names where an ownership parameter is read from.
type ParamIn string

// Parameter locations.
const (
	InPath  ParamIn = "path"
	InQuery ParamIn = "query"
)

// OwnerRule requires the named parameter to be the caller's email.
// Admins pass regardless. An empty query parameter is allowed; handlers
// default it to the caller.
type OwnerRule struct {
	In   ParamIn
	Name string
}

// Policy is the access rule for one operation.
type Policy struct {
	Auth  AuthMode
	Roles []domain.Role // empty means any authenticated caller
	Owner *OwnerRule
}

var (
	staff      = []domain.Role{domain.RoleLibrarian, domain.RoleAdmin}
	adminsOnly = []domain.Role{domain.RoleAdmin}
	ownerPath  = &OwnerRule{In: InPath, Name: "email"}
	ownerQuery = &OwnerRule{In: InQuery, Name: "email"}
)

// policies maps every operation id to its access rule. Operations missing
// from this table are refused.
var policies = map[string]Policy{
	"listBooks":             {Auth: Public},
	"createBook":            {Auth: Required, Roles: staff},
	"getBook":               {Auth: Public},
	"listBooksByOwner":      {Auth: Public},
	"updateBook":            {Auth: Required},
	"searchBooks":           {Auth: Public},
	"discoverBooks":         {Auth: Public},
	"upsertUser":            {Auth: Required},
	"getUserRole":           {Auth: Public},
	"updateRole":            {Auth: Required, Roles: adminsOnly},
	"placeOrder":            {Auth: Required},
	"getOrder":              {Auth: Required},
	"listMyOrders":          {Auth: Required, Owner: ownerPath},
	"listSellerOrders":      {Auth: Required, Roles: staff, Owner: ownerPath},
	"listInventory":         {Auth: Required, Owner: ownerPath},
	"createCheckoutSession": {Auth: Required},
	"confirmPayment":        {Auth: Optional},
	"listInvoices":          {Auth: Required},
	"addWishlist":           {Auth: Required},
	"listWishlist":          {Auth: Required, Owner: ownerQuery},
	"healthCheck":           {Auth: Public},
}

// RoleLookup resolves a caller's stored role. An empty role means the
// user has no record.
type RoleLookup interface {
	GetRole(ctx context.Context, email string) (domain.Role, error)
}

// policyMiddleware enforces the policy table before any handler runs.
func policyMiddleware(api huma.API, roles RoleLookup) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op == nil {
			next(ctx)
			return
		}

		policy, ok := policies[op.OperationID]
		if !ok {
			writeErr(api, ctx, domainerrors.Internal("operation has no access policy: "+op.OperationID))
			return
		}

		if err := authorize(ctx, policy, roles); err != nil {
			writeErr(api, ctx, err)
			return
		}
		next(ctx)
	}
}

func authorize(ctx huma.Context, policy Policy, roles RoleLookup) error {
	if policy.Auth != Required {
		return nil
	}

	identity, authErr := identityFrom(ctx.Context())
	if identity == nil {
		if authErr != nil {
			return authErr
		}
		return domainerrors.Unauthenticated("authentication required")
	}

	// The stored role is looked up at most once.
	var (
		role    domain.Role
		fetched bool
	)
	callerRole := func() (domain.Role, error) {
		if fetched {
			return role, nil
		}
		r, err := roles.GetRole(ctx.Context(), identity.Email)
		if err != nil {
			return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to look up caller role")
		}
		role, fetched = r, true
		return role, nil
	}

	if len(policy.Roles) > 0 {
		r, err := callerRole()
		if err != nil {
			return err
		}
		if !r.OneOf(policy.Roles...) {
			return domainerrors.Forbidden("insufficient role")
		}
	}

	if policy.Owner != nil {
		var value string
		switch policy.Owner.In {
		case InPath:
			value = ctx.Param(policy.Owner.Name)
		case InQuery:
			value = ctx.Query(policy.Owner.Name)
		}
		if value == "" && policy.Owner.In == InQuery {
			return nil
		}
		if !domain.SameEmail(value, identity.Email) {
			r, err := callerRole()
			if err != nil {
				return err
			}
			if r != domain.RoleAdmin {
				return domainerrors.Forbidden("you can only access your own records")
			}
		}
	}

	return nil
}

func writeErr(api huma.API, ctx huma.Context, err error) {
	status := domainerrors.CodeOf(err).HTTPStatus()
	_ = huma.WriteErr(api, ctx, status, err.Error(), err) //nolint:errcheck // nothing left to report to
}
