package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"philliesbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGames struct {
	game *models.Game
	err  error
	date time.Time
}

func (s *stubGames) FetchGame(ctx context.Context, team string, date time.Time) (*models.Game, error) {
	s.date = date
	return s.game, s.err
}

type recordingPublisher struct {
	texts []string
	err   error
}

func (p *recordingPublisher) Publish(ctx context.Context, text string) error {
	p.texts = append(p.texts, text)
	return p.err
}

type countingSweeper struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSweeper) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 0
}

func (c *countingSweeper) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var gameDay = &models.Game{
	HomeTeamName: "Phillies", AwayTeamName: "Mets",
	Time: "7:05", AMPM: "PM", TimeZone: "ET", Venue: "Citizens Bank Park",
	HomeProbablePitcher: &models.Pitcher{Last: "Nola", Wins: "3", Losses: "1", ERA: "2.10"},
	AwayProbablePitcher: &models.Pitcher{Last: "deGrom", Wins: "2", Losses: "2", ERA: "1.98"},
}

func newTestScheduler(t *testing.T, g *stubGames, p *recordingPublisher) *Scheduler {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	s := NewScheduler(Config{
		Team:         "Phillies",
		Location:     loc,
		AnnounceCron: "0 11 * * *",
		Games:        g,
		Publisher:    p,
	})
	s.now = func() time.Time { return time.Date(2016, 5, 4, 1, 0, 0, 0, time.UTC) }
	return s
}

func TestAnnounce_GameDay(t *testing.T) {
	g := &stubGames{game: gameDay}
	p := &recordingPublisher{}
	s := newTestScheduler(t, g, p)

	require.NoError(t, s.Announce(context.Background()))
	assert.Equal(t, "2016-05-03", g.date.Format("2006-01-02"), "date is taken in the team's time zone")
	require.Len(t, p.texts, 1)
	assert.Equal(t,
		"Game day! Phillies vs Mets at 7:05 PM ET (Citizens Bank Park)\nProbables: Nola(3-1, ERA:2.10) vs. deGrom(2-2, ERA:1.98)",
		p.texts[0])
}

func TestAnnounce_OffDayPublishesNothing(t *testing.T) {
	p := &recordingPublisher{}
	s := newTestScheduler(t, &stubGames{}, p)

	require.NoError(t, s.Announce(context.Background()))
	assert.Empty(t, p.texts)
}

func TestAnnounce_Errors(t *testing.T) {
	s := newTestScheduler(t, &stubGames{err: context.Canceled}, &recordingPublisher{})
	assert.ErrorIs(t, s.Announce(context.Background()), context.Canceled)

	s = newTestScheduler(t, &stubGames{game: gameDay}, &recordingPublisher{err: errors.New("webhook down")})
	assert.Error(t, s.Announce(context.Background()))
}

func TestStart_RejectsBadCron(t *testing.T) {
	s := NewScheduler(Config{
		AnnounceCron: "every morning",
		Games:        &stubGames{},
		Publisher:    &recordingPublisher{},
	})
	assert.Error(t, s.Start(context.Background()))
}

func TestStart_SweepsPendingPrompts(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(Config{
		SweepInterval: 10 * time.Millisecond,
		Sweeper:       sweeper,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))

	assert.Eventually(t, func() bool { return sweeper.count() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestAnnouncement_Away(t *testing.T) {
	text, ok := Announcement("Phillies", &models.Game{HomeTeamName: "Braves", AwayTeamName: "Phillies", Time: "1:10", AMPM: "PM"})
	require.True(t, ok)
	assert.Equal(t, "Game day! Phillies @ Braves at 1:10 PM ET", text)

	_, ok = Announcement("Phillies", nil)
	assert.False(t, ok)
}
