package palavra

import "fmt"

const shareSignature = "Enviado por Palavra Certa"

// ShareText builds the text a client hands to the platform share sheet or clipboard.
func ShareText(v Verse, devotional bool) string {
	if devotional {
		return fmt.Sprintf("Devocional do Dia ✨\n\n%s\n\n\"%s\"\n\nReflexão:\n%s\n\n%s",
			v.Reference, v.Text, v.Reflection, shareSignature)
	}
	return fmt.Sprintf("%s\n\n\"%s\"\n\nReflexão:\n%s\n\n%s",
		v.Reference, v.Text, v.Reflection, shareSignature)
}

// ShareTitle is the title for the share sheet.
func ShareTitle(v Verse, devotional bool) string {
	if devotional {
		return "Palavra Certa: Devocional do Dia"
	}
	return "Palavra Certa: " + v.Reference
}
