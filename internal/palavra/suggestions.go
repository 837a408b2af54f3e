package palavra

// DefaultSuggestionCount is how many suggestions the home page shows.
const DefaultSuggestionCount = 15

var feelings = []string{
	"Estou me sentindo ansioso(a).",
	"Estou triste e sem esperança.",
	"Sinto-me sozinho(a).",
	"Estou com medo do futuro.",
	"Preciso de força para continuar.",
	"Estou de luto pela perda de alguém.",
	"Sinto-me culpado(a) por algo que fiz.",
	"Estou com raiva e frustrado(a).",
	"Preciso de paciência.",
	"Sinto inveja de outras pessoas.",
	"Estou grato(a) por minhas bênçãos.",
	"Sinto-me fraco(a) na minha fé.",
	"Estou enfrentando uma grande tentação.",
	"Preciso de sabedoria para uma decisão.",
	"Sinto-me sobrecarregado(a) com o trabalho.",
	"Estou preocupado(a) com minha família.",
	"Preciso de cura física.",
	"Estou lutando contra um vício.",
	"Sinto-me perdido(a) e sem direção.",
	"Preciso perdoar alguém que me magoou.",
	"Quero ser uma pessoa melhor.",
	"Estou feliz e quero celebrar.",
	"Sinto-me desvalorizado(a).",
	"Estou enfrentando problemas financeiros.",
	"Tenho uma entrevista de emprego importante.",
	"Vou passar por uma cirurgia.",
	"Meu casamento está em crise.",
	"Sinto-me exausto(a) mentalmente.",
	"Estou com o coração partido.",
	"Preciso de motivação.",
	"Sinto-me inseguro(a).",
	"Estou decepcionado(a) comigo mesmo(a).",
	"Estou lutando contra pensamentos negativos.",
	"Sinto falta de um ente querido.",
	"Quero ter mais fé.",
	"Estou com dificuldades para dormir.",
	"Sinto-me confuso(a) sobre a vida.",
	"Preciso de paz interior.",
	"Estou começando um novo capítulo na vida.",
	"Sinto-me sem amigos.",
	"Estou preocupado(a) com a saúde de alguém.",
	"Preciso de coragem para enfrentar um desafio.",
	"Sinto-me sem propósito.",
	"Estou com ciúmes.",
	"Preciso de ajuda para controlar meu temperamento.",
	"Sinto-me oprimido(a) pela injustiça.",
	"Estou esperando um resultado importante.",
	"Quero aprender a confiar mais em Deus.",
	"Sinto-me espiritualmente seco(a).",
	"Estou em busca de conforto.",
}

// Suggestions returns the first n ready-made feelings. n <= 0 returns all of them.
func Suggestions(n int) []string {
	if n <= 0 || n > len(feelings) {
		n = len(feelings)
	}
	out := make([]string, n)
	copy(out, feelings[:n])
	return out
}
