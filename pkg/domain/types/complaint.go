package types

import (
	"strconv"
	"strings"
)

// ComplaintID identifies a stored complaint. Zero means the complaint has not been saved yet.
type ComplaintID int64

func (id ComplaintID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// IsZero reports whether the ID has not been assigned
func (id ComplaintID) IsZero() bool {
	return id == 0
}

// ParseComplaintID parses a decimal complaint ID
func ParseComplaintID(s string) (ComplaintID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return ComplaintID(v), nil
}

// UserID identifies the user who owns or adheres to a complaint
type UserID string

func (id UserID) String() string {
	return string(id)
}

// Department is the routing and ownership key of a complaint
type Department string

func (d Department) String() string {
	return string(d)
}

// Normalize trims surrounding whitespace
func (d Department) Normalize() Department {
	return Department(strings.TrimSpace(string(d)))
}

// IsEmpty reports whether the department is blank after trimming
func (d Department) IsEmpty() bool {
	return d.Normalize() == ""
}
