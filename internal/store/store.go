// Package store holds the user and UI state for the lifetime of the process:
// preferences, favorites, portfolios, search history and the transient coin
// cache. A whitelisted subset survives restarts as a single named JSON
// record; everything else resets to defaults.
package store

import (
	"sync"
	"time"

	"crypto-tracker-go/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Theme is the display theme, either light or dark.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// maxSearchHistory bounds the search history to the most recent entries.
const maxSearchHistory = 10

// Store is the process-wide user-state store. All mutations run to
// completion under one mutex, so no reader observes a half-applied update.
// Mutations of persisted fields synchronously write the whitelisted subset
// through the repository.
type Store struct {
	mu     sync.Mutex
	logger *zap.Logger
	repo   Repository
	name   string

	theme             Theme
	currency          string
	favorites         []string
	portfolios        []models.Portfolio
	activePortfolioID *string
	searchHistory     []string

	// Ephemeral fields, never persisted.
	coins       []models.CoinMarket
	lastUpdated int64
	sidebarOpen bool

	now func() time.Time
}

// New creates a store with defaults overlaid by whatever the repository holds
// under name. A load failure is returned rather than silently starting from
// defaults.
func New(repo Repository, name string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		logger:   logger,
		repo:     repo,
		name:     name,
		theme:    ThemeLight,
		currency: "usd",
		now:      time.Now,
	}

	raw, err := repo.Load(name)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		p, err := decodeState(raw)
		if err != nil {
			return nil, err
		}
		s.apply(p)
		logger.Info("Restored persisted state",
			zap.String("record", name),
			zap.Int("favorites", len(s.favorites)),
			zap.Int("portfolios", len(s.portfolios)))
	}

	return s, nil
}

// snapshot maps the full state to its persisted subset. Caller holds the lock.
func (s *Store) snapshot() persistedState {
	return persistedState{
		Theme:             s.theme,
		Currency:          s.currency,
		Favorites:         append([]string(nil), s.favorites...),
		Portfolios:        append([]models.Portfolio(nil), s.portfolios...),
		ActivePortfolioID: s.activePortfolioID,
		SearchHistory:     append([]string(nil), s.searchHistory...),
	}
}

// apply overlays a persisted subset onto the store. Caller holds the lock or
// owns the store exclusively.
func (s *Store) apply(p persistedState) {
	if p.Theme == ThemeLight || p.Theme == ThemeDark {
		s.theme = p.Theme
	}
	if p.Currency != "" {
		s.currency = p.Currency
	}
	s.favorites = p.Favorites
	s.portfolios = p.Portfolios
	s.activePortfolioID = p.ActivePortfolioID
	s.searchHistory = p.SearchHistory
}

// persist writes the whitelisted subset through the repository. Caller holds
// the lock. Persistence failures are logged, never silently swallowed, but do
// not roll back the in-memory mutation.
func (s *Store) persist() {
	payload, err := encodeState(s.snapshot())
	if err != nil {
		s.logger.Error("Failed to encode state", zap.Error(err))
		return
	}
	if err := s.repo.Save(s.name, payload); err != nil {
		s.logger.Error("Failed to persist state", zap.String("record", s.name), zap.Error(err))
	}
}

// ToggleTheme flips between light and dark.
func (s *Store) ToggleTheme() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == ThemeLight {
		s.theme = ThemeDark
	} else {
		s.theme = ThemeLight
	}
	s.persist()
}

// Theme returns the current theme.
func (s *Store) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetCurrency replaces the display currency unconditionally; any string is
// accepted.
func (s *Store) SetCurrency(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currency = code
	s.persist()
}

// Currency returns the current display currency code.
func (s *Store) Currency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currency
}

// AddToFavorites adds a coin id to the favorites. Adding an id that is
// already present is a no-op, so the set never holds duplicates.
func (s *Store) AddToFavorites(coinID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.favorites {
		if id == coinID {
			return
		}
	}
	s.favorites = append(s.favorites, coinID)
	s.persist()
}

// RemoveFromFavorites removes a coin id from the favorites.
func (s *Store) RemoveFromFavorites(coinID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.favorites[:0]
	for _, id := range s.favorites {
		if id != coinID {
			kept = append(kept, id)
		}
	}
	s.favorites = kept
	s.persist()
}

// IsFavorite reports whether a coin id is favorited.
func (s *Store) IsFavorite(coinID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.favorites {
		if id == coinID {
			return true
		}
	}
	return false
}

// Favorites returns a copy of the favorites in insertion order.
func (s *Store) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.favorites...)
}

// AddPortfolio appends a portfolio and makes it active. A missing id is
// assigned, missing timestamps are stamped, and the aggregates are derived
// from the holdings before storing.
func (s *Store) AddPortfolio(p models.Portfolio) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	ts := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = ts
	}
	p.UpdatedAt = ts
	p.Recalculate(s.change24hByCoin())

	s.portfolios = append(s.portfolios, p)
	s.activePortfolioID = &p.ID
	s.persist()
}

// PortfolioUpdate is a partial portfolio; nil fields are left untouched.
type PortfolioUpdate struct {
	Name     *string
	Holdings *[]models.Holding
}

// UpdatePortfolio shallow-merges upd into the matching portfolio and
// rederives its aggregates. Unknown ids are a no-op.
func (s *Store) UpdatePortfolio(id string, upd PortfolioUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.portfolios {
		if s.portfolios[i].ID != id {
			continue
		}
		p := &s.portfolios[i]
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.Holdings != nil {
			p.Holdings = append([]models.Holding(nil), (*upd.Holdings)...)
		}
		p.UpdatedAt = s.now()
		p.Recalculate(s.change24hByCoin())
		s.persist()
		return
	}
}

// DeletePortfolio removes the matching portfolio. Deleting the active one
// unsets the active reference.
func (s *Store) DeletePortfolio(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.portfolios[:0]
	for _, p := range s.portfolios {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.portfolios = kept
	if s.activePortfolioID != nil && *s.activePortfolioID == id {
		s.activePortfolioID = nil
	}
	s.persist()
}

// SetActivePortfolio sets the active reference unconditionally; the id is not
// checked for existence.
func (s *Store) SetActivePortfolio(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePortfolioID = &id
	s.persist()
}

// Portfolios returns a copy of the portfolio list.
func (s *Store) Portfolios() []models.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Portfolio(nil), s.portfolios...)
}

// ActivePortfolioID returns the active portfolio id, or "" when unset.
func (s *Store) ActivePortfolioID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activePortfolioID == nil {
		return ""
	}
	return *s.activePortfolioID
}

// change24hByCoin builds the 24h change map from the transient coin cache.
// Caller holds the lock.
func (s *Store) change24hByCoin() map[string]float64 {
	change := make(map[string]float64, len(s.coins))
	for _, c := range s.coins {
		change[c.ID] = c.PriceChangePercentage24h
	}
	return change
}

// SetCoins replaces the transient coin cache wholesale and refreshes every
// portfolio holding's current price and derived aggregates from it.
func (s *Store) SetCoins(coins []models.CoinMarket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.coins = coins

	price := make(map[string]float64, len(coins))
	for _, c := range coins {
		price[c.ID] = c.CurrentPrice
	}
	change := s.change24hByCoin()

	repriced := false
	for i := range s.portfolios {
		p := &s.portfolios[i]
		for j := range p.Holdings {
			h := &p.Holdings[j]
			if current, ok := price[h.CoinID]; ok && current != h.CurrentPrice {
				h.CurrentPrice = current
				repriced = true
			}
		}
		p.Recalculate(change)
	}
	if repriced {
		s.persist()
	}
}

// Coins returns the transient coin cache.
func (s *Store) Coins() []models.CoinMarket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coins
}

// SetLastUpdated replaces the coin cache freshness timestamp.
func (s *Store) SetLastUpdated(ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdated = ts
}

// LastUpdated returns the coin cache freshness timestamp, 0 when never set.
func (s *Store) LastUpdated() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdated
}

// SetSidebarOpen sets the sidebar visibility flag.
func (s *Store) SetSidebarOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebarOpen = open
}

// SidebarOpen returns the sidebar visibility flag.
func (s *Store) SidebarOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidebarOpen
}

// AddToSearchHistory prepends a query, removing any earlier occurrence and
// truncating to the 10 most recent entries. Re-adding a present query moves
// it to the front without growing the list.
func (s *Store) AddToSearchHistory(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]string, 0, len(s.searchHistory)+1)
	history = append(history, query)
	for _, q := range s.searchHistory {
		if q != query {
			history = append(history, q)
		}
	}
	if len(history) > maxSearchHistory {
		history = history[:maxSearchHistory]
	}
	s.searchHistory = history
	s.persist()
}

// ClearSearchHistory empties the search history.
func (s *Store) ClearSearchHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchHistory = nil
	s.persist()
}

// SearchHistory returns a copy of the search history, most recent first.
func (s *Store) SearchHistory() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.searchHistory...)
}
