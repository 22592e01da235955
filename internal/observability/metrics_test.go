package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveQuery(t *testing.T) {
	DatabaseQueryLatency.Reset()

	ObserveQuery(`SELECT * FROM "posts" WHERE id = $1`, 3*time.Millisecond)
	ObserveQuery("INSERT INTO `users` (email) VALUES ($1)", time.Millisecond)
	ObserveQuery(`UPDATE posts SET status = $1 WHERE id = $2`, time.Millisecond)
	ObserveQuery("", time.Millisecond)

	// One series per operation/table pair, including the OTHER/unknown
	// fallback for unparseable statements.
	assert.Equal(t, 4, testutil.CollectAndCount(DatabaseQueryLatency))
}
