package game

import (
	"fmt"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// ForGame returns the outcome table for a game type. Tables are shared
// read-only singletons; it is safe to call from any goroutine.
func ForGame(g domain.GameType) (Table, error) {
	switch g {
	case domain.GameWingo:
		return Wingo(), nil
	case domain.GameK3:
		return K3(), nil
	case domain.GameFiveD:
		return FiveD(), nil
	case domain.GameTrxWin:
		return TrxWin(), nil
	default:
		return nil, fmt.Errorf("game table for %q: %w", g, domain.ErrUnknownGame)
	}
}
