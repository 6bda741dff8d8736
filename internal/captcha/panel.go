package captcha

import (
	"time"

	"github.com/marcin-skalski/appwatch/internal/api"
)

type FadePhase int

const (
	FadeNone FadePhase = iota
	FadeOut
	FadeIn
)

// View is what the panel looks like at one instant.
type View struct {
	Visible  bool
	Entering bool
	Image    string
	Fade     FadePhase
	Text     string
	Pulsing  bool
}

// Panel applies effects as transitions with deadlines. It is a value type;
// copies taken for rendering do not share state with the original.
type Panel struct {
	Visual Visual

	fade  time.Duration
	pulse time.Duration

	shownImage    string // image displayed before the current swap
	swapStart     time.Time
	entranceStart time.Time
	pulseStart    time.Time
}

func NewPanel(fade, pulse time.Duration) Panel {
	return Panel{fade: fade, pulse: pulse}
}

// Update runs Sync against status and applies the result at now.
func (p *Panel) Update(status api.SessionStatus, now time.Time) []Effect {
	next, effects := Sync(p.Visual, status)
	p.apply(next, effects, now)
	return effects
}

func (p *Panel) apply(next Visual, effects []Effect, now time.Time) {
	for _, e := range effects {
		switch e.Kind {
		case EffectShow:
			if e.Entrance {
				p.entranceStart = now
			}
		case EffectHide:
			p.entranceStart = time.Time{}
		case EffectSwapImage:
			// Swapping mid-fade starts from whatever is on screen now.
			p.shownImage = p.View(now).Image
			p.swapStart = now
		case EffectSetText:
			if e.Pulse {
				p.pulseStart = now
			}
		}
	}
	p.Visual = next
}

// View reports the panel at now. During a swap the old image stays up until
// the midpoint of the fade.
func (p Panel) View(now time.Time) View {
	v := View{
		Visible: p.Visual.Visible,
		Image:   p.Visual.Image,
		Text:    p.Visual.Text,
	}
	if !v.Visible {
		return v
	}

	if !p.entranceStart.IsZero() && now.Sub(p.entranceStart) < p.fade {
		v.Entering = true
	}

	if !p.swapStart.IsZero() {
		elapsed := now.Sub(p.swapStart)
		switch {
		case elapsed < p.fade/2:
			v.Image = p.shownImage
			v.Fade = FadeOut
		case elapsed < p.fade:
			v.Fade = FadeIn
		}
	}

	if !p.pulseStart.IsZero() && now.Sub(p.pulseStart) < p.pulse {
		v.Pulsing = true
	}
	return v
}
