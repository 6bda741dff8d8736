package captcha

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcin-skalski/appwatch/internal/api"
)

func strp(s string) *string { return &s }

func status(img, text *string) api.SessionStatus {
	return api.SessionStatus{CaptchaImage: img, CaptchaText: text}
}

func kinds(effects []Effect) []EffectKind {
	out := make([]EffectKind, len(effects))
	for i, e := range effects {
		out[i] = e.Kind
	}
	return out
}

func TestSyncAppearThenChangeText(t *testing.T) {
	var v Visual

	// poll 1: no captcha
	v, effects := Sync(v, status(nil, nil))
	assert.Empty(t, effects)
	assert.False(t, v.Visible)

	// poll 2: image A, text 1234
	v, effects = Sync(v, status(strp("data:A"), strp("1234")))
	assert.Equal(t, []EffectKind{EffectShow, EffectSwapImage, EffectSetText}, kinds(effects))
	assert.True(t, effects[0].Entrance)
	assert.True(t, effects[2].Pulse)
	assert.Equal(t, Visual{Visible: true, Image: "data:A", Text: "1234"}, v)

	// poll 3: same image, new text
	v, effects = Sync(v, status(strp("data:A"), strp("5678")))
	assert.Equal(t, []EffectKind{EffectSetText}, kinds(effects))
	assert.Equal(t, "5678", effects[0].Text)
	assert.Equal(t, "5678", v.Text)

	// poll 4: nothing changed
	_, effects = Sync(v, status(strp("data:A"), strp("5678")))
	assert.Empty(t, effects)
}

func TestSyncHideKeepsContent(t *testing.T) {
	v := Visual{Visible: true, Image: "data:A", Text: "1234"}

	v, effects := Sync(v, status(strp(""), nil))
	assert.Equal(t, []EffectKind{EffectHide}, kinds(effects))
	assert.False(t, v.Visible)

	// Reappearing with the same content only replays the entrance.
	_, effects = Sync(v, status(strp("data:A"), strp("1234")))
	assert.Equal(t, []EffectKind{EffectShow}, kinds(effects))
}

func TestSyncPlaceholderWithoutText(t *testing.T) {
	v, effects := Sync(Visual{}, status(strp("data:A"), nil))
	require.Len(t, effects, 3)
	assert.Equal(t, Placeholder, v.Text)

	_, effects = Sync(v, status(strp("data:A"), strp("")))
	assert.Empty(t, effects)
}

func TestPanelScenario(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := NewPanel(300*time.Millisecond, 600*time.Millisecond)

	p.Update(status(nil, nil), now)
	assert.False(t, p.View(now).Visible)

	now = now.Add(time.Second)
	p.Update(status(strp("data:A"), strp("1234")), now)
	v := p.View(now)
	assert.True(t, v.Visible)
	assert.True(t, v.Entering)
	assert.True(t, v.Pulsing)
	assert.Equal(t, FadeOut, v.Fade)

	settled := p.View(now.Add(700 * time.Millisecond))
	assert.False(t, settled.Entering)
	assert.False(t, settled.Pulsing)
	assert.Equal(t, FadeNone, settled.Fade)
	assert.Equal(t, "data:A", settled.Image)

	now = now.Add(time.Second)
	effects := p.Update(status(strp("data:A"), strp("5678")), now)
	assert.Equal(t, []EffectKind{EffectSetText}, kinds(effects))
	v = p.View(now)
	assert.True(t, v.Pulsing)
	assert.False(t, v.Entering)
	assert.Equal(t, FadeNone, v.Fade)
	assert.Equal(t, "5678", v.Text)
}

func TestPanelSwapsImageAtFadeMidpoint(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := NewPanel(300*time.Millisecond, 600*time.Millisecond)

	p.Update(status(strp("data:A"), strp("1")), now)
	now = now.Add(time.Second)
	p.Update(status(strp("data:B"), strp("1")), now)

	before := p.View(now.Add(100 * time.Millisecond))
	assert.Equal(t, "data:A", before.Image)
	assert.Equal(t, FadeOut, before.Fade)

	after := p.View(now.Add(200 * time.Millisecond))
	assert.Equal(t, "data:B", after.Image)
	assert.Equal(t, FadeIn, after.Fade)

	done := p.View(now.Add(400 * time.Millisecond))
	assert.Equal(t, "data:B", done.Image)
	assert.Equal(t, FadeNone, done.Fade)
}
