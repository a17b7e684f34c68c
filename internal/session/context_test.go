package session

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_Defaults(t *testing.T) {
	ctx := NewContext("memory")

	assert.Equal(t, NoWorld, ctx.World())
	assert.Equal(t, DefaultKey, ctx.Key())
}

func TestContext_SetWorld(t *testing.T) {
	ctx := NewContext("file")

	prev := ctx.SetWorld("  Survival ")
	assert.Equal(t, NoWorld, prev)
	assert.Equal(t, "Survival", ctx.World())
	assert.Equal(t, "survival", ctx.Key())

	ctx.SetWorld("")
	assert.Equal(t, NoWorld, ctx.World())
	assert.Equal(t, DefaultKey, ctx.Key())
}

func TestContext_Attrs(t *testing.T) {
	ctx := NewContext("sqlite")
	ctx.SetWorld("mp.example.net")

	attrs := ctx.Attrs()
	assert.Equal(t, []slog.Attr{
		slog.String("world", "mp.example.net"),
		slog.String("storage", "sqlite"),
	}, attrs)
}

func TestContext_ThreadSafe(t *testing.T) {
	ctx := NewContext("memory")

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				ctx.SetWorld("a")
			} else {
				ctx.SetWorld("b")
			}
		}()
		go func() {
			defer wg.Done()
			_ = ctx.Key()
			_ = ctx.Attrs()
		}()
	}
	wg.Wait()

	assert.Contains(t, []string{"a", "b"}, ctx.World())
}
