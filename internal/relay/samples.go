package relay

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Default sample intervals.
const (
	DefaultMessageInterval  = 5 * time.Second
	DefaultStatusInterval   = 7 * time.Second
	DefaultSettingsInterval = 9 * time.Second
)

// Random is the source of randomness for the sample generators.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// globalRandom uses the goroutine safe top level functions of math/rand/v2.
type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) IntN(n int) int   { return rand.IntN(n) }

// MessageTick publishes a server authored message on the news channel.
func MessageTick(channels *Channels, counter *Counter, clock Clock) TickFunc {
	return func(ctx context.Context) error {
		id := counter.NextID()
		channels.MessageAdded.Publish(ctx, Message{
			ID:        id,
			Text:      "Server message #" + id,
			CreatedAt: clock.stamp(),
			Author:    "server",
			Channel:   "news",
			Important: false,
			Tags:      []string{"auto"},
		})
		return nil
	}
}

// StatusTick publishes an online status with a load in [0.1, 1.6].
func StatusTick(channels *Channels, rnd Random, clock Clock) TickFunc {
	if rnd == nil {
		rnd = globalRandom{}
	}
	return func(ctx context.Context) error {
		channels.StatusChanged.Publish(ctx, SystemStatus{
			Online:    true,
			Load:      sampleLoad(rnd),
			UpdatedAt: clock.stamp(),
		})
		return nil
	}
}

// SettingsTick publishes a random theme and language.
func SettingsTick(channels *Channels, rnd Random, clock Clock) TickFunc {
	if rnd == nil {
		rnd = globalRandom{}
	}
	themes := []string{"dark", "light"}
	langs := []string{"ja", "en"}
	return func(ctx context.Context) error {
		channels.SettingsUpdated.Publish(ctx, Settings{
			Theme:     themes[rnd.IntN(len(themes))],
			Lang:      langs[rnd.IntN(len(langs))],
			UpdatedAt: clock.stamp(),
		})
		return nil
	}
}

// sampleLoad returns a value in [0.1, 1.6] rounded to two decimals.
func sampleLoad(rnd Random) float64 {
	return math.Round((0.1+rnd.Float64()*1.5)*100) / 100
}

// GeneratorsConfig sets the interval of each sample generator.
type GeneratorsConfig struct {
	MessageInterval  time.Duration
	StatusInterval   time.Duration
	SettingsInterval time.Duration
}

// DefaultGeneratorsConfig returns the 5s/7s/9s schedule.
func DefaultGeneratorsConfig() GeneratorsConfig {
	return GeneratorsConfig{
		MessageInterval:  DefaultMessageInterval,
		StatusInterval:   DefaultStatusInterval,
		SettingsInterval: DefaultSettingsInterval,
	}
}

// Generators owns the three independent sample generators.
type Generators struct {
	Message  *Generator
	Status   *Generator
	Settings *Generator
}

// NewGenerators wires the sample generators to channels. The message generator
// shares counter with the sendMessage command. rnd is shared by the status and
// settings generators and must be safe for concurrent use; nil uses math/rand/v2.
func NewGenerators(channels *Channels, counter *Counter, clock Clock, rnd Random, cfg GeneratorsConfig) *Generators {
	return &Generators{
		Message:  NewGenerator("message", cfg.MessageInterval, MessageTick(channels, counter, clock)),
		Status:   NewGenerator("status", cfg.StatusInterval, StatusTick(channels, rnd, clock)),
		Settings: NewGenerator("settings", cfg.SettingsInterval, SettingsTick(channels, rnd, clock)),
	}
}

// All returns the generators in start order.
func (g *Generators) All() []*Generator {
	return []*Generator{g.Message, g.Status, g.Settings}
}

// Start starts every generator. On error, generators already started are stopped.
func (g *Generators) Start(ctx context.Context) error {
	for i, gen := range g.All() {
		if err := gen.Start(ctx); err != nil {
			for _, started := range g.All()[:i] {
				started.Stop()
			}
			return err
		}
	}
	return nil
}

// Stop stops every generator.
func (g *Generators) Stop() {
	for _, gen := range g.All() {
		gen.Stop()
	}
}
