package pipeline

const (
	headerFileFormat      = "📁 Arquivo: %s"
	headerLanguageFormat  = "🌐 Idioma: %s"
	headerModelFormat     = "🤖 Modelo: %s (API %s)"
	headerProcessedFormat = "🕒 Processado em: %s (%s)"
	headerSpeakersFormat  = "👥 Locutores: %s"
	headerNoSpeakers      = "👥 Locutores: sem diarização"

	plainTranscriptPrefix = "[Transcrição]: "

	stdoutResultOpen  = "======= RESULTADO ======="
	stdoutResultClose = "========================="

	messageAttachmentTitleFormat = ":page_facing_up:  **Transcrição de %s**"
	messagePoweredByLine         = "-# *Gerado por kikitori*"
	messageFailureFormat         = ":warning:  **Falha ao transcrever %s**\n```%s```"

	recordIDFormat      = "🆔 Registro: %s"
	recordStatusFormat  = "📌 Status: %s"
	recordStartedFormat = "🕒 Iniciado em: %s"
	recordEndedFormat   = "🏁 Finalizado em: %s"
	recordErrorFormat   = "❗ Erro: %s"
)
