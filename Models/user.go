package Models

import (
	"gorm.io/gorm"
)

// Permission levels. Level 2 and above may edit tasks assigned to other
// users (reassignment, cross-column moves). Level 3 may manage accounts.
const (
	PermissionViewer = 1
	PermissionEditor = 2
	PermissionAdmin  = 3
)

type User struct {
	gorm.Model
	Name       string `json:"name" gorm:"uniqueIndex"`
	Email      string `json:"email"`
	Password   []byte `json:"-"`
	Permission int    `json:"permission"`
	Team       string `json:"team" gorm:"index"`
}

// UserRef is the denormalized shape embedded in task and task log responses.
type UserRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Team  string `json:"team"`
}

func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Team: u.Team}
}

// ListUsers returns users ordered by name, optionally scoped to one team.
// The board's user selector feeds from this.
func ListUsers(db *gorm.DB, team string) ([]User, error) {
	query := db.Order("name asc")
	if team != "" {
		query = query.Where("team = ?", team)
	}
	var users []User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CanEditOthersTasks reports whether the user may reassign or reorder
// tasks belonging to other users.
func (u *User) CanEditOthersTasks() bool {
	return u.Permission >= PermissionEditor
}
