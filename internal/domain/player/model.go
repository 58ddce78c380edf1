package player

import (
	"fmt"
	"strings"
)

// Player is a platform-global athlete identity. Descriptive attributes are
// refreshed on every sync; the id never changes.
type Player struct {
	ID       string
	FullName string
	Position string
	Team     string
	Status   string
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}

	return nil
}

// DisplayName falls back to the id when the upstream record carries no name.
func (p Player) DisplayName() string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	return p.ID
}
