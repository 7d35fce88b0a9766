package utils

import "go.mongodb.org/mongo-driver/bson/primitive"

// ContainsString returns true iff the provided string slice hay contains
// string needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// ContainsObjectID returns true iff hay contains needle.
func ContainsObjectID(hay []primitive.ObjectID, needle primitive.ObjectID) bool {
	for _, id := range hay {
		if id == needle {
			return true
		}
	}
	return false
}

// RemoveObjectID returns hay without every occurrence of needle, preserving
// order.
func RemoveObjectID(hay []primitive.ObjectID, needle primitive.ObjectID) []primitive.ObjectID {
	out := hay[:0]
	for _, id := range hay {
		if id != needle {
			out = append(out, id)
		}
	}
	return out
}

// Min returns the smaller of x or y.
func Min(x, y int) int {
	if x < y {
		return x
	}
	return y
}
