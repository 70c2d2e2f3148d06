// Package messages holds every user-visible string in Spanish and
// English. The original audience is Spanish-speaking, so Spanish is the
// default for unknown language codes.
package messages

import "fmt"

// Lang selects a message language.
type Lang string

const (
	ES Lang = "es"
	EN Lang = "en"
)

// pick returns the Spanish or English variant for the language.
func pick(lang Lang, es, en string) string {
	if lang == EN {
		return en
	}
	return es
}

// --- Menus ---

func MainMenu(lang Lang) string {
	return pick(lang,
		"Bienvenido a Solfeo — elige una opción para empezar:\n\n"+
			"• /play — comenzar a practicar (luego elige entre modos: free o time).\n"+
			"• /historial — ver opciones de historial y estadísticas (tiempos, aciertos, listado de partidas).\n"+
			"• /settings — configurar preferencia de idioma y sistema de notación.\n\n"+
			"En local puedes escribir 'play', 'historial' o 'settings' sin '/'.\n",
		"Welcome to Solfeo — pick an option to get started:\n\n"+
			"• /play — start practicing (then choose a mode: free or time).\n"+
			"• /historial — history and statistics options (times, accuracy, saved games).\n"+
			"• /settings — language and notation system preferences.\n\n"+
			"Locally you can type 'play', 'historial' or 'settings' without the '/'.\n",
	)
}

func PlayMenu(lang Lang) string {
	return pick(lang,
		"Modos de juego:\n\n"+
			"• Usa /free para modo libre — no guarda datos ni mide tiempos.\n"+
			"• Usa /time para iniciar sesión temporizada — se guardarán tiempos y aciertos.\n\n"+
			"En local puedes escribir 'free' o 'time' sin '/'.\n",
		"Game modes:\n\n"+
			"• Use /free for free mode — nothing is timed or saved.\n"+
			"• Use /time to start a timed session — times and accuracy are recorded.\n\n"+
			"Locally you can type 'free' or 'time' without the '/'.\n",
	)
}

func HistoryMenu(lang Lang) string {
	return pick(lang,
		"Historial y estadísticas:\n\n"+
			"• /tiempos [n] — genera gráficos de tiempos por nota para las últimas n sesiones.\n"+
			"• /aciertos [n] — genera gráficos de tasa de aciertos por nota para las últimas n sesiones.\n"+
			"• /old_games [n] — lista rápida de las últimas n partidas guardadas.\n\n"+
			"En local puedes escribir 'tiempos', 'aciertos' u 'old_games' sin '/'.\n",
		"History and statistics:\n\n"+
			"• /tiempos [n] — per-note response time charts for the last n sessions.\n"+
			"• /aciertos [n] — per-note accuracy charts for the last n sessions.\n"+
			"• /old_games [n] — quick list of the last n saved games.\n\n"+
			"Locally you can type 'tiempos', 'aciertos' or 'old_games' without the '/'.\n",
	)
}

func SettingsMenu(lang Lang) string {
	return pick(lang,
		"Ajustes de usuario:\n\n"+
			"• /set_language — cambiar el idioma de los mensajes (es/en).\n"+
			"• /set_system — elegir el sistema de notación ('letter' o 'solfege').\n\n"+
			"En local puedes teclear 'set_language' o 'set_system'.\n",
		"User settings:\n\n"+
			"• /set_language — change the message language (es/en).\n"+
			"• /set_system — pick the notation system ('letter' or 'solfege').\n\n"+
			"Locally you can type 'set_language' or 'set_system'.\n",
	)
}

// --- Drill flow ---

func Question(lang Lang, clefLabel string) string {
	return pick(lang,
		fmt.Sprintf("¿Qué nota es esta en clave de %s?\n"+
			"Puedes responder con do, re, mi... o con letras (C, D, E...).", clefLabel),
		fmt.Sprintf("Which note is this in the %s clef?\n"+
			"Answer with do, re, mi... or with letters (C, D, E...).", clefLabel),
	)
}

func FreeModeStarted(lang Lang) string {
	return pick(lang,
		"Modo libre activado. Te mostraré notas sin medir tiempos ni guardar resultados.",
		"Free mode on. I'll show you notes without timing or saving anything.",
	)
}

func TimedModeStarted(lang Lang) string {
	return pick(lang,
		"Modo temporizado activado. Tus tiempos y aciertos se guardarán al finalizar (/stop).",
		"Timed mode on. Your times and accuracy will be saved when you finish (/stop).",
	)
}

func Correct(lang Lang, pitch, solfege string) string {
	return pick(lang,
		fmt.Sprintf("Correcto. Es %s (%s).", pitch, solfege),
		fmt.Sprintf("Correct. It's %s (%s).", pitch, solfege),
	)
}

func Incorrect(lang Lang, pitch, solfege string) string {
	return pick(lang,
		fmt.Sprintf("No es correcto.\nLa nota correcta era %s (%s).", pitch, solfege),
		fmt.Sprintf("Not quite.\nThe correct note was %s (%s).", pitch, solfege),
	)
}

func Unrecognized(lang Lang) string {
	return pick(lang,
		"No he podido interpretar la respuesta. "+
			"Escribe solo la nota, por ejemplo: do, re, mi, fa, sol, la, si "+
			"o C, D, E, F, G, A, B. (Si esto ocurre dos veces, la sesión se reiniciará.)",
		"I couldn't read that answer. "+
			"Type just the note, e.g. do, re, mi, fa, sol, la, si "+
			"or C, D, E, F, G, A, B. (Twice in a row resets the session.)",
	)
}

func TooManyInvalid(lang Lang) string {
	return pick(lang,
		"Demasiadas respuestas no reconocidas. Reiniciando la sesión.",
		"Too many unrecognized answers. Resetting the session.",
	)
}

func StartHint(lang Lang) string {
	return pick(lang,
		"Escribe '/start' para ver la ayuda.",
		"Type '/start' for help.",
	)
}

// --- Sessions & history ---

func SessionSaved(lang Lang, path string) string {
	return pick(lang,
		fmt.Sprintf("Sesión guardada en: %s", path),
		fmt.Sprintf("Session saved to: %s", path),
	)
}

func SaveFailed(lang Lang, err error) string {
	return pick(lang,
		fmt.Sprintf("Error guardando la sesión: %v", err),
		fmt.Sprintf("Error saving the session: %v", err),
	)
}

func NoTimedSession(lang Lang) string {
	return pick(lang,
		"No hay una sesión temporizada en curso.",
		"There is no timed session in progress.",
	)
}

func NothingToSave(lang Lang) string {
	return pick(lang,
		"No hay datos de sesión para guardar.",
		"There is no session data to save.",
	)
}

func TimedOut(lang Lang, seconds int) string {
	return fmt.Sprintf(pick(lang,
		"Sesión temporizada terminada por inactividad (más de %ds).",
		"Timed session ended for inactivity (over %ds).",
	), seconds)
}

func NoSessions(lang Lang) string {
	return pick(lang,
		"No hay sesiones guardadas para este usuario.",
		"No saved sessions for this user.",
	)
}

func NoChartData(lang Lang) string {
	return pick(lang,
		"No hay datos para generar gráficas.",
		"There is no data to chart.",
	)
}

func RecentSessions(lang Lang, n int) string {
	return pick(lang,
		fmt.Sprintf("Últimas %d sesiones:", n),
		fmt.Sprintf("Last %d sessions:", n),
	)
}

// --- Settings flow ---

func AskLanguage(lang Lang) string {
	return pick(lang,
		"Por favor responde con el código de idioma que prefieres (ej.: 'es' o 'en').",
		"Please reply with your preferred language code (e.g. 'es' or 'en').",
	)
}

func AskSystem(lang Lang) string {
	return pick(lang,
		"Indica el sistema de notación que prefieres: 'letter' (C D E ...) o 'solfege' (do re mi ...).",
		"Pick your preferred notation system: 'letter' (C D E ...) or 'solfege' (do re mi ...).",
	)
}

func LanguageStored(lang Lang, code string) string {
	return pick(lang,
		fmt.Sprintf("Idioma almacenado: %s. Puedes usar /help para ver opciones.", code),
		fmt.Sprintf("Language saved: %s. Use /help to see the options.", code),
	)
}

func SystemStored(lang Lang, system string) string {
	return pick(lang,
		fmt.Sprintf("Sistema almacenado: %s. Usa /play para continuar practicando.", system),
		fmt.Sprintf("Notation system saved: %s. Use /play to keep practicing.", system),
	)
}

func InvalidLanguage(lang Lang) string {
	return pick(lang,
		"No se recibió un idioma válido. Intenta de nuevo: 'es' o 'en'.",
		"That wasn't a valid language. Try again: 'es' or 'en'.",
	)
}

func InvalidSystem(lang Lang) string {
	return pick(lang,
		"Opción no reconocida. Escribe 'letter' o 'solfege'.",
		"Unrecognized option. Type 'letter' or 'solfege'.",
	)
}

func LanguageNotConfigured(lang Lang) string {
	return pick(lang,
		"No tienes configurado el idioma. Por favor responde con el código de idioma que prefieres (ej. 'es' o 'en').",
		"Your language is not configured. Please reply with your preferred language code (e.g. 'es' or 'en').",
	)
}

// --- Console ---

func ConsoleWelcome(lang Lang) string {
	return pick(lang,
		"Modo local de Solfeo — escribe 'q' para salir en cualquier momento.\n"+
			"Escribe 'play', 'historial' o 'settings' para empezar.",
		"Solfeo local mode — type 'q' to quit at any time.\n"+
			"Type 'play', 'historial' or 'settings' to get started.",
	)
}

func Goodbye(lang Lang) string {
	return pick(lang,
		"Saliendo. Hasta luego.",
		"Leaving. See you soon.",
	)
}

func ChartWritten(lang Lang, path string) string {
	return pick(lang,
		fmt.Sprintf("Gráfica escrita en: %s", path),
		fmt.Sprintf("Chart written to: %s", path),
	)
}
