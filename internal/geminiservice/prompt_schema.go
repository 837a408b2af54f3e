package geminiservice

/* =================================================================================
							GEMINI SCHEMA DEFINITION
	This is the structure that tells Gemini how to format its JSON response
=================================================================================*/

// GeminiSchema defines the structure for "Controlled Generation" (Structured Output).
type GeminiSchema struct {
	// Type defines the data type (e.g., "OBJECT", "ARRAY", "STRING").
	Type string `json:"type"`

	// Description explains the field's purpose to the model.
	Description string `json:"description,omitempty"`

	// Properties maps field names to their child schemas (used when Type is "OBJECT").
	Properties map[string]*GeminiSchema `json:"properties,omitempty"`

	// Items defines the schema for elements within an array (used when Type is "ARRAY").
	Items *GeminiSchema `json:"items,omitempty"`

	// Required lists the field names that the model MUST include in the response.
	Required []string `json:"required,omitempty"`
}

/* =================================================================================
							PROMPTS
=================================================================================*/

// VersePrompt is used for FREE and BASIC searches. %s is the user's feeling.
const VersePrompt = `Aja como um conselheiro espiritual e teólogo. Baseado no sentimento do usuário, forneça um versículo bíblico relevante, o texto completo do versículo e uma breve reflexão encorajadora e pessoal. Seja sensível e reconfortante. O sentimento do usuário é: "%s"`

// DeepVersePrompt is used for PRO searches. %s is the user's feeling.
const DeepVersePrompt = `Aja como um teólogo experiente e conselheiro espiritual profundo. Baseado no sentimento do usuário, forneça um versículo bíblico relevante, o texto completo do versículo e uma reflexão teologicamente rica, profunda, encorajadora e pessoal. A reflexão deve ter pelo menos 2 parágrafos. Seja sensível e reconfortante. O sentimento do usuário é: "%s"`

// DevotionalPrompt asks for the verse of the day.
const DevotionalPrompt = `Aja como um conselheiro espiritual. Escolha um versículo bíblico inspirador para ser o devocional de hoje, forneça o texto completo do versículo e uma reflexão curta e edificante que ajude o leitor a começar o dia com fé e esperança.`

// PrayerPrompt asks for a short prayer. Arguments: feeling, verse reference, verse text.
const PrayerPrompt = `Escreva uma oração curta, pessoal e reconfortante, em primeira pessoa, para alguém que se sente assim: "%s". Baseie a oração no versículo %s: "%s". Responda apenas com o texto da oração, sem título e sem formatação.`

// SpeechPrompt wraps the text read aloud by the TTS model.
const SpeechPrompt = `Leia com voz calma e acolhedora: %s`

/*
VerseSchema describes the exact JSON the model returns for a verse.
The field names are the wire names of palavra.Verse.
*/
var VerseSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"verse": {
			Type:        "STRING",
			Description: "A referência do versículo bíblico (ex: João 3:16).",
		},
		"text": {
			Type:        "STRING",
			Description: "O texto completo do versículo bíblico.",
		},
		"reflection": {
			Type:        "STRING",
			Description: "Uma reflexão curta, calorosa e encorajadora baseada no sentimento do usuário e no versículo. Para planos PRO, a reflexão deve ser mais profunda e detalhada.",
		},
	},
	Required: []string{"verse", "text", "reflection"},
}
