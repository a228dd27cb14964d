package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harperreed/zala/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStoreUpdateAndSubscribe(t *testing.T) {
	s := NewStore(1)
	var seen []int
	unsub := s.Subscribe(func(v int) { seen = append(seen, v) })

	s.Set(2)
	got := s.Update(func(v int) int { return v * 10 })
	assert.Equal(t, 20, got)
	assert.Equal(t, 20, s.Get())

	unsub()
	s.Set(3)
	assert.Equal(t, []int{2, 20}, seen)
}

func TestStoreConcurrentUpdates(t *testing.T) {
	s := NewStore(0)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Get())
}

func TestSubscriberMayReadStore(t *testing.T) {
	s := NewStore("a")
	var inside string
	s.Subscribe(func(string) { inside = s.Get() })
	s.Set("b")
	assert.Equal(t, "b", inside)
}

func TestActiveSourcesFallsBackToDefaults(t *testing.T) {
	f := SearchFilter{}
	assert.Equal(t, models.DefaultLeadSources, f.ActiveSources())

	f = f.ToggleSource(models.SourceGPT)
	assert.Equal(t, []models.LeadSource{models.SourceGPT}, f.ActiveSources())

	f = f.ToggleSource(models.SourceGPT)
	assert.Empty(t, f.Sources)
	assert.Equal(t, models.DefaultLeadSources, f.ActiveSources())
}

func TestToggleSourceDoesNotAlias(t *testing.T) {
	base := SearchFilter{Sources: []models.LeadSource{models.SourceDB, models.SourceGPT}}
	next := base.ToggleSource(models.SourceDB)
	assert.Equal(t, []models.LeadSource{models.SourceDB, models.SourceGPT}, base.Sources)
	assert.Equal(t, []models.LeadSource{models.SourceGPT}, next.Sources)
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("email")
	require.NoError(t, err)
	assert.Equal(t, SortEmail, k)

	k, err = ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, k)

	_, err = ParseSortKey("zip")
	assert.Error(t, err)
}

func TestNewAppStartsWithSentinelCampaign(t *testing.T) {
	app := NewApp(time.Millisecond)
	assert.Equal(t, models.NoCampaignID, app.Campaign.Get().CampaignID)
	assert.Nil(t, app.User())
	assert.Equal(t, NoLead, app.CampaignPage.Get().ViewingLead)
	assert.Equal(t, TabConnect, app.CampaignPage.Get().Tab)

	app.Auth.Set(&models.User{UserID: 1})
	app.Campaign.Set(models.Campaign{CampaignID: 4})
	app.Reset()
	assert.Nil(t, app.User())
	assert.Equal(t, models.NoCampaignID, app.Campaign.Get().CampaignID)
}
