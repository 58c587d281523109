package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"datamapper/internal/domain"
	"datamapper/internal/mapper"
	"datamapper/internal/repository"
)

// userView is the JSON shape of a user.
type userView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	Active    bool      `json:"active"`
	Nickname  *string   `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}

func toView(u *domain.User) userView {
	return userView{
		ID:        u.ID(),
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		Active:    u.Active,
		Nickname:  u.Nickname,
		CreatedAt: u.CreatedAt,
	}
}

func printUsers(cmd *cobra.Command, users []*domain.User) error {
	if getOutputFormat(cmd) == "json" {
		views := make([]userView, 0, len(users))
		for _, u := range users {
			views = append(views, toView(u))
		}
		return printJSON(cmd.OutOrStdout(), views)
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			domain.FormatID(u.ID()),
			u.DisplayName(),
			u.Email,
			strconv.Itoa(u.Age),
			strconv.FormatBool(u.Active),
		})
	}
	printTable(cmd.OutOrStdout(), []string{"id", "name", "email", "age", "active"}, rows)
	return nil
}

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Look up users through the data mapper",
	}

	cmd.AddCommand(newUsersGetCmd(opts))
	cmd.AddCommand(newUsersListCmd(opts))
	cmd.AddCommand(newUsersWhereCmd(opts))
	cmd.AddCommand(newUsersEmailCmd(opts))
	cmd.AddCommand(newUsersYoungestCmd(opts))
	cmd.AddCommand(newUsersQueryCmd(opts))

	return cmd
}

// runUsers opens a mapper for the duration of one command and prints what
// find returns.
func runUsers(cmd *cobra.Command, opts *rootOptions, find func(m *repository.UserMapper) ([]*domain.User, error)) error {
	m, closeFn, err := opts.openUsers()
	if err != nil {
		return err
	}
	defer closeFn()

	users, err := find(m)
	if err != nil {
		return err
	}
	return printUsers(cmd, users)
}

func newUsersGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>...",
		Short: "Find users by id",
		Long:  "Find users by id. Repeated ids resolve to the same cached instance and cost one query.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, a := range args {
				id, err := domain.ParseID(a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return runUsers(cmd, opts, func(m *repository.UserMapper) ([]*domain.User, error) {
				out := make([]*domain.User, 0, len(ids))
				for _, id := range ids {
					u, err := m.Find(cmd.Context(), id)
					if err != nil {
						return nil, err
					}
					out = append(out, u)
				}
				return out, nil
			})
		},
	}
}

func newUsersListCmd(opts *rootOptions) *cobra.Command {
	var filter domain.UserFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users matching a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUsers(cmd, opts, func(m *repository.UserMapper) ([]*domain.User, error) {
				return m.FindByFilter(cmd.Context(), filter)
			})
		},
	}

	cmd.Flags().IntVar(&filter.MinAge, "min-age", 0, "Only users at least this old")
	cmd.Flags().StringVar(&filter.NamePrefix, "name", "", "Only users whose name starts with this prefix")
	cmd.Flags().BoolVar(&filter.ActiveOnly, "active", false, "Only active users")

	return cmd
}

func newUsersWhereCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "where <clause> [bind...]",
		Short: "Find users matching a raw WHERE clause",
		Example: `  datamapper users where "age > ? AND active = ?" 30 1
  datamapper users where "email LIKE ? ORDER BY id" '%@example.com'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			binds := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				binds = append(binds, bindArg(a))
			}
			return runUsers(cmd, opts, func(m *repository.UserMapper) ([]*domain.User, error) {
				return m.FindObjectsWhere(cmd.Context(), args[0], binds...)
			})
		},
	}
}

// bindArg passes integers as int64 so numeric comparisons bind as numbers.
func bindArg(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

func newUsersEmailCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "email <address>",
		Short: "Find the user with an exact email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsers(cmd, opts, func(m *repository.UserMapper) ([]*domain.User, error) {
				users, err := m.FindByEmail(cmd.Context(), args[0])
				if err != nil {
					return nil, err
				}
				if len(users) == 0 {
					return nil, domain.ErrNotFound("no user with email %q", args[0])
				}
				return users, nil
			})
		},
	}
}

func newUsersYoungestCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "youngest",
		Short: "List the youngest users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUsers(cmd, opts, func(m *repository.UserMapper) ([]*domain.User, error) {
				return m.FindYoungestFirst(cmd.Context(), limit)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 3, "Maximum number of users")

	return cmd
}

func newUsersQueryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <select> [bind...]",
		Short: "Map the rows of a full SELECT statement",
		Long:  "Map the rows of a full SELECT statement. The projection must include every mapped users column.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			binds := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				binds = append(binds, bindArg(a))
			}
			src := mapper.NewStatementSource(args[0], binds...)
			return runUsers(cmd, opts, func(m *repository.UserMapper) ([]*domain.User, error) {
				return m.FindMany(cmd.Context(), src)
			})
		},
	}
}
