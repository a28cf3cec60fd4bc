package cachectrl

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SettledAfter is how long after the end of a UTC day its counters are taken as final.
const SettledAfter = time.Hour

func OptIn(ctx *fiber.Ctx, lastModified time.Time, maxAge time.Duration) {
	ctx.Set(fiber.HeaderCacheControl, "private, max-age="+strconv.Itoa(int(maxAge.Seconds())))
	ctx.Response().Header.SetLastModified(lastModified)
}

func OptOut(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	ctx.Set(fiber.HeaderPragma, "no-cache")
	ctx.Set(fiber.HeaderExpires, "0")
}

// ForRange lets clients cache a statistics response only when every day bucket the range
// touches has settled; anything reaching into a still-counting day opts out.
func ForRange(ctx *fiber.Ctx, rangeEnd, now time.Time) {
	dayEnd := rangeEnd.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	if now.Before(dayEnd.Add(SettledAfter)) {
		OptOut(ctx)
		return
	}
	OptIn(ctx, dayEnd, 24*time.Hour)
}
