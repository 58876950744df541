package models

import "strconv"

// Owner identifies who saved a circuit: either nobody (Anonymous) or a
// registered user. The zero value is Anonymous.
type Owner struct {
	userID int64
	isUser bool
}

// Anonymous returns the owner of circuits saved without an account.
func Anonymous() Owner {
	return Owner{}
}

// UserOwner returns the owner for the user with the given id.
func UserOwner(id int64) Owner {
	return Owner{userID: id, isUser: true}
}

// OwnerFromColumn converts a nullable user_id column into an Owner.
func OwnerFromColumn(userID *int64) Owner {
	if userID == nil {
		return Anonymous()
	}
	return UserOwner(*userID)
}

// UserID returns the owning user's id and true, or false for Anonymous.
func (o Owner) UserID() (int64, bool) {
	return o.userID, o.isUser
}

// IsAnonymous reports whether the circuit has no owning user.
func (o Owner) IsAnonymous() bool {
	return !o.isUser
}

// Column returns the value stored in the nullable user_id column.
func (o Owner) Column() *int64 {
	if !o.isUser {
		return nil
	}
	id := o.userID
	return &id
}

func (o Owner) String() string {
	if !o.isUser {
		return "anonymous"
	}
	return "user:" + strconv.FormatInt(o.userID, 10)
}
