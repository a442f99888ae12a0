package authz

// Role names as stored in users.role.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Action string

const (
	Create     Action = "create"
	Read       Action = "read"
	Update     Action = "update"
	Delete     Action = "delete"
	SelfUpdate Action = "self-update"
)

type Resource string

const (
	Books            Resource = "books"
	Authors          Resource = "authors"
	Ratings          Resource = "ratings"
	Reviews          Resource = "reviews"
	ReadingHistories Resource = "reading_histories"
	Users            Resource = "users"
)

// Actor is the authenticated caller. A nil *Actor is an anonymous request.
type Actor struct {
	UserID int64
	Role   string
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// Owns reports whether the actor is the user identified by userID.
func (a *Actor) Owns(userID int64) bool {
	return a != nil && a.UserID == userID
}

// Gate answers "may this actor perform action on resource".
type Gate interface {
	CanPerform(actor *Actor, action Action, resource Resource) bool
}

type permission struct {
	action   Action
	resource Resource
}

// RoleGate is a static role -> permission table.
// Admins may do everything; nil actors get the anonymous set.
type RoleGate struct {
	roles     map[string]map[permission]bool
	anonymous map[permission]bool
}

func NewRoleGate() *RoleGate {
	return &RoleGate{
		roles: map[string]map[permission]bool{
			RoleUser: grant(
				permission{Read, Books},
				permission{Read, Authors},
				permission{Create, Ratings},
				permission{Read, Reviews},
				permission{Create, Reviews},
				permission{SelfUpdate, Reviews},
				permission{Read, ReadingHistories},
				permission{Create, ReadingHistories},
				permission{SelfUpdate, ReadingHistories},
				permission{Read, Users},
				permission{SelfUpdate, Users},
			),
		},
		anonymous: grant(permission{Read, Books}),
	}
}

func grant(perms ...permission) map[permission]bool {
	m := make(map[permission]bool, len(perms))
	for _, p := range perms {
		m[p] = true
	}
	return m
}

func (g *RoleGate) CanPerform(actor *Actor, action Action, resource Resource) bool {
	if actor == nil {
		return g.anonymous[permission{action, resource}]
	}
	if actor.Role == RoleAdmin {
		return true
	}
	return g.roles[actor.Role][permission{action, resource}]
}
