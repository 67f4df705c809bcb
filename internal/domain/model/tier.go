package model

import (
	"fmt"
	"strings"
)

// AccessTier is the capability level of the provider access key.
type AccessTier int

const (
	Free AccessTier = iota
	Subscription
)

func (t AccessTier) String() string {
	switch t {
	case Free:
		return "free"
	case Subscription:
		return "subscription"
	default:
		return fmt.Sprintf("AccessTier(%d)", int(t))
	}
}

func ParseAccessTier(s string) (AccessTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free":
		return Free, nil
	case "subscription", "paid":
		return Subscription, nil
	default:
		return Free, fmt.Errorf("unknown access tier %q", s)
	}
}
