package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLazyExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	st := NewMemoryStore()
	st.now = clock.Now
	defer st.Close()

	st.Save(&Session{
		Token:     "tok",
		CreatedAt: clock.Now(),
		ExpiresAt: clock.Now().Add(time.Minute),
	})

	_, ok := st.Get("tok")
	require.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = st.Get("tok")
	assert.False(t, ok, "expired entry removed on read")

	// The entry is gone, not just hidden.
	clock.t = clock.t.Add(-2 * time.Minute)
	_, ok = st.Get("tok")
	assert.False(t, ok)
}

func TestMemoryStorePurgeExpired(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	st := NewMemoryStore()
	st.now = clock.Now
	defer st.Close()

	st.Save(&Session{Token: "live", ExpiresAt: clock.Now().Add(time.Hour)})
	st.Save(&Session{Token: "dead", ExpiresAt: clock.Now().Add(time.Second)})

	clock.Advance(time.Minute)
	st.PurgeExpired()

	_, ok := st.Get("live")
	assert.True(t, ok)
	_, ok = st.Get("dead")
	assert.False(t, ok)
}

func TestMemoryStoreDelete(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()

	st.Save(&Session{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)})
	st.Delete("tok")

	_, ok := st.Get("tok")
	assert.False(t, ok)

	st.Delete("never-existed")
}
