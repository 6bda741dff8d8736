// Package captcha keeps the captcha panel in step with status snapshots.
// Sync is a pure reducer deciding what changed; Panel turns the resulting
// effects into time-bounded transitions.
package captcha

import "github.com/marcin-skalski/appwatch/internal/api"

// Placeholder is shown when the server reports an image but no text yet.
const Placeholder = "-"

// Visual is the rendered state the next snapshot is compared against.
type Visual struct {
	Visible bool
	Image   string
	Text    string
}

type EffectKind int

const (
	EffectShow EffectKind = iota
	EffectHide
	EffectSwapImage
	EffectSetText
)

func (k EffectKind) String() string {
	switch k {
	case EffectShow:
		return "show"
	case EffectHide:
		return "hide"
	case EffectSwapImage:
		return "swap_image"
	case EffectSetText:
		return "set_text"
	default:
		return "unknown"
	}
}

type Effect struct {
	Kind     EffectKind
	Image    string
	Text     string
	Entrance bool
	Pulse    bool
}

// Sync compares prev with status and returns the next visual state together
// with the effects needed to get there. Unchanged content yields no effects.
// Hiding keeps the last image and text, so a reappearing identical image is
// not swapped again.
func Sync(prev Visual, status api.SessionStatus) (Visual, []Effect) {
	next := prev
	var effects []Effect

	if status.CaptchaImage == nil || *status.CaptchaImage == "" {
		if prev.Visible {
			next.Visible = false
			effects = append(effects, Effect{Kind: EffectHide})
		}
		return next, effects
	}

	if !prev.Visible {
		next.Visible = true
		effects = append(effects, Effect{Kind: EffectShow, Entrance: true})
	}

	if img := *status.CaptchaImage; img != prev.Image {
		next.Image = img
		effects = append(effects, Effect{Kind: EffectSwapImage, Image: img})
	}

	text := Placeholder
	if status.CaptchaText != nil && *status.CaptchaText != "" {
		text = *status.CaptchaText
	}
	if text != prev.Text {
		next.Text = text
		effects = append(effects, Effect{Kind: EffectSetText, Text: text, Pulse: true})
	}

	return next, effects
}
