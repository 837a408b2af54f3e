package geminiservice

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"PalavraCerta/internal/palavra"
	"PalavraCerta/internal/plan"
)

const verseTemperature = 0.7

// FallbackVerse is returned whenever a verse cannot be produced.
var FallbackVerse = palavra.Verse{
	Reference:  "Salmos 46:1",
	Text:       "Deus é o nosso refúgio e fortaleza, socorro bem presente na angústia.",
	Reflection: "Houve um problema ao buscar uma palavra específica para você, mas lembre-se sempre disto: independente do que você esteja passando, Deus é seu refúgio seguro. Ele está presente e pronto para te ajudar.",
}

// FallbackPrayer is returned whenever a prayer cannot be produced.
const FallbackPrayer = "Senhor, entrego a Ti tudo o que estou sentindo agora. Que a Tua paz, que excede todo entendimento, guarde o meu coração e a minha mente. Amém."

var _ palavra.Provider = (*Client)(nil)

func validVerse(v palavra.Verse) bool {
	return strings.TrimSpace(v.Reference) != "" && strings.TrimSpace(v.Text) != "" && strings.TrimSpace(v.Reflection) != ""
}

func (c *Client) fetchVerse(ctx context.Context, task, model, prompt string) palavra.Verse {
	var v palavra.Verse
	if err := c.GenerateAndParse(ctx, task, model, "", prompt, VerseSchema, verseTemperature, &v); err != nil {
		c.log.Error().Err(err).Str("task", task).Msg("Error fetching verse, using fallback")
		return FallbackVerse
	}
	if !validVerse(v) {
		c.log.Error().Str("task", task).Msg("Verse response in invalid format, using fallback")
		return FallbackVerse
	}
	return v
}

// FetchVerseForFeeling picks a verse and reflection for feeling. PRO uses the
// larger model and a deeper prompt.
func (c *Client) FetchVerseForFeeling(ctx context.Context, feeling string, p plan.Plan) palavra.Verse {
	model, prompt := c.cfg.FlashModel, fmt.Sprintf(VersePrompt, feeling)
	if p.Deep() {
		model, prompt = c.cfg.ProModel, fmt.Sprintf(DeepVersePrompt, feeling)
	}
	return c.fetchVerse(ctx, "verse", model, prompt)
}

func (c *Client) FetchDailyDevotional(ctx context.Context) palavra.Verse {
	return c.fetchVerse(ctx, "devotional", c.cfg.FlashModel, DevotionalPrompt)
}

func (c *Client) FetchPrayer(ctx context.Context, feeling string, v palavra.Verse) string {
	prayer, err := c.GenerateText(ctx, "prayer", c.cfg.FlashModel, fmt.Sprintf(PrayerPrompt, feeling, v.Reference, v.Text))
	if err != nil {
		c.log.Error().Err(err).Msg("Error fetching prayer, using fallback")
		return FallbackPrayer
	}
	return prayer
}

// FetchSpeechAudio returns raw 16-bit PCM at 24kHz. ok is false on any failure.
func (c *Client) FetchSpeechAudio(ctx context.Context, text string) ([]byte, bool) {
	data, err := c.GenerateSpeech(ctx, fmt.Sprintf(SpeechPrompt, text))
	if err != nil {
		c.log.Error().Err(err).Msg("Error generating speech")
		return nil, false
	}
	audio, err := base64.StdEncoding.DecodeString(data.Data)
	if err != nil || len(audio) == 0 {
		c.log.Error().Err(err).Msg("Speech response is not valid base64 audio")
		return nil, false
	}
	return audio, true
}
