package cache

import "strconv"

// RankingKeyOpts are the options that change a ranking result.
type RankingKeyOpts struct {
	Sort      string  `json:"sort,omitempty"`
	Direction string  `json:"dir,omitempty"`
	Limit     int     `json:"limit,omitempty"`
	Padding   float64 `json:"padding,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// RankingKey identifies the ranked rows of a data set under a ranking
	// definition.
	RankingKey(dataHash, configHash string, opts RankingKeyOpts) string
	// StatsKey identifies the column summaries over one row order.
	StatsKey(dataHash, configHash string, order uint64, bins int) string
}

// DefaultKeyer hashes every component into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) RankingKey(dataHash, configHash string, opts RankingKeyOpts) string {
	return hashKey("ranking", dataHash, configHash, opts)
}

func (DefaultKeyer) StatsKey(dataHash, configHash string, order uint64, bins int) string {
	return "stats:" + strconv.FormatUint(order, 16) + ":" + hashKey(strconv.Itoa(bins), dataHash, configHash)
}

// ScopedKeyer prefixes the keys of another keyer, for example to keep
// results of different users apart in a shared Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer prefixes the keys of inner. A nil inner means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) RankingKey(dataHash, configHash string, opts RankingKeyOpts) string {
	return k.prefix + k.inner.RankingKey(dataHash, configHash, opts)
}

func (k *ScopedKeyer) StatsKey(dataHash, configHash string, order uint64, bins int) string {
	return k.prefix + k.inner.StatsKey(dataHash, configHash, order, bins)
}
