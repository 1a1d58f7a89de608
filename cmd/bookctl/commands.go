package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/do/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bookcourier/bookcourier-server/internal/auth"
	"github.com/bookcourier/bookcourier-server/internal/di/providers"
	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/service"
)

func tokenCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage local identity tokens",
	}

	var email, name string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Mint a bearer token for IDENTITY_PROVIDER=local",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(flags, func(i do.Injector) error {
				tokens, err := do.Invoke[*auth.LocalTokenService](i)
				if err != nil {
					return err
				}
				token, err := tokens.Issue(email, name)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	issue.Flags().StringVar(&email, "email", "", "Email the token names")
	issue.Flags().StringVar(&name, "name", "", "Display name claim")
	_ = issue.MarkFlagRequired("email") //nolint:errcheck // flag is defined above

	cmd.AddCommand(issue)
	return cmd
}

func userCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var email, role string
	setRole := &cobra.Command{
		Use:   "set-role",
		Short: "Set a user's role (user, librarian, admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(flags, func(i do.Injector) error {
				users, err := do.Invoke[*service.UserService](i)
				if err != nil {
					return err
				}
				user, err := users.UpdateRole(cmd.Context(), "", service.UpdateRoleRequest{Email: email, Role: role})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
				return nil
			})
		},
	}
	setRole.Flags().StringVar(&email, "email", "", "User email")
	setRole.Flags().StringVar(&role, "role", "", "New role")
	_ = setRole.MarkFlagRequired("email") //nolint:errcheck // flag is defined above
	_ = setRole.MarkFlagRequired("role")  //nolint:errcheck // flag is defined above

	list := &cobra.Command{
		Use:   "list",
		Short: "List users with their roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(flags, func(i do.Injector) error {
				users, err := do.Invoke[*service.UserService](i)
				if err != nil {
					return err
				}
				all, err := users.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, u := range all {
					fmt.Fprintf(out, "%-10s %s\n", u.Role, u.Email)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(setRole, list)
	return cmd
}

// seedBook is one sample listing.
type seedBook struct {
	title, author, category, price string
	quantity                       int
}

var seedBooks = []seedBook{
	{"A Wizard of Earthsea", "Ursula K. Le Guin", "Fantasy", "7.50", 3},
	{"The Dispossessed", "Ursula K. Le Guin", "Science Fiction", "9.00", 2},
	{"Invisible Cities", "Italo Calvino", "Literary Fiction", "6.25", 1},
	{"The Name of the Rose", "Umberto Eco", "Mystery", "8.40", 2},
	{"Pale Fire", "Vladimir Nabokov", "Literary Fiction", "5.00", 1},
	{"Roadside Picnic", "Arkady and Boris Strugatsky", "Science Fiction", "4.75", 4},
}

func seedCmd(flags *globalFlags) *cobra.Command {
	var sellerEmail, sellerName string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a librarian and a handful of sample listings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(flags, func(i do.Injector) error {
				return runSeed(cmd, i, service.Caller{Email: sellerEmail, Name: sellerName})
			})
		},
	}
	cmd.Flags().StringVar(&sellerEmail, "seller", "librarian@bookcourier.local", "Email of the seeded librarian")
	cmd.Flags().StringVar(&sellerName, "seller-name", "Seed Librarian", "Display name of the seeded librarian")
	return cmd
}

func runSeed(cmd *cobra.Command, i do.Injector, seller service.Caller) error {
	ctx := cmd.Context()
	users := do.MustInvoke[*service.UserService](i)
	catalog := do.MustInvoke[*service.CatalogService](i)

	if _, _, err := users.UpsertUser(ctx, seller, service.UpsertUserRequest{Email: seller.Email, Name: seller.Name}); err != nil {
		return fmt.Errorf("create seller: %w", err)
	}
	if _, err := users.UpdateRole(ctx, "", service.UpdateRoleRequest{Email: seller.Email, Role: string(domain.RoleLibrarian)}); err != nil {
		return fmt.Errorf("promote seller: %w", err)
	}

	existing, err := catalog.ListBooksByOwner(ctx, seller.Email)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, b := range existing {
		have[strings.ToLower(b.Title)] = true
	}

	created := 0
	for _, sb := range seedBooks {
		if have[strings.ToLower(sb.title)] {
			continue
		}
		if _, err := catalog.CreateBook(ctx, seller, service.CreateBookRequest{
			Title:    sb.title,
			Author:   sb.author,
			Price:    decimal.RequireFromString(sb.price),
			Quantity: sb.quantity,
			Category: sb.category,
		}); err != nil {
			return fmt.Errorf("create %q: %w", sb.title, err)
		}
		created++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d books for %s (%d already present)\n",
		created, seller.Email, len(seedBooks)-created)
	return nil
}

func reindexCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the discovery index from the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(flags, func(i do.Injector) error {
				return runReindex(cmd.Context(), cmd, i)
			})
		},
	}
}

func runReindex(ctx context.Context, cmd *cobra.Command, i do.Injector) error {
	storeHandle := do.MustInvoke[*providers.StoreHandle](i)
	indexHandle := do.MustInvoke[*providers.SearchIndexHandle](i)

	books, err := storeHandle.ListAllBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}
	if err := indexHandle.Rebuild(books); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	count, err := indexHandle.DocumentCount()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d of %d books\n", count, len(books))
	return nil
}
