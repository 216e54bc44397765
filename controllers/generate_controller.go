package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mmcdole/gofeed"
	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

const refugioStyle = `MANUAL DE ESTILO DE REFUGIO EN LA PALABRA

Refugio es como esa carta de un amigo espiritual que llega en el momento justo.
No somos predicadores, somos compañeros de camino. No vendemos, acompañamos.

VOZ Y TONO: escribe como si escribieras a un amigo cercano. Siempre "tú",
nunca "usted". Comparte luchas propias. Incluso en temas difíciles hay
esperanza. Nunca condescendencia ni superioridad espiritual.

ESTRUCTURA: saludo personal con {{name}} (nunca "Estimado/a"); gancho inicial
de 2-3 líneas; cuerpo de 3-5 párrafos cortos con una idea cada uno; cita
destacada opcional; conexión sutil con Refugio sin vender; cierre cálido
firmado "— El equipo de Refugio".

FORMATO HTML: párrafos <p style="margin-bottom: 25px;">. Citas en bloque con
borde dorado #E1B955. Paleta: azul #1F3A5F, dorado #E1B955, marrón #8B7355,
fondo crema #FAF7F0. Máximo 400-500 palabras, sin emojis, sin lenguaje de
marketing, sin listas con bullets, sin hacer sentir culpa.`

var systemPrompts = map[string]string{
	models.TypeSequence: `Eres un escritor espiritual que escribe emails para "Refugio en la Palabra", una app católica de oración.

` + refugioStyle + `

TU TAREA: crear un email de la secuencia de nurturing. La app incluye rosario
guiado con audio, Evangelio del día con reflexión, Lectio Divina paso a paso,
meditación nocturna y recordatorios personalizados.

Variables: {{name}}, {{code}}. Escribe SOLO el contenido HTML interno (sin DOCTYPE, html, head, body).`,

	models.TypeBroadcast: `Eres el equipo de comunicación de "Refugio en la Palabra".

` + refugioStyle + `

TU TAREA: crear un email broadcast para toda la comunidad. Debe sentirse como
una actualización personal de un amigo, no como un newsletter corporativo.

Variables: {{name}}, {{code}}. Escribe SOLO el contenido HTML interno.`,

	models.TypeGospelReflection: `Eres un acompañante espiritual que escribe reflexiones del Evangelio para "Refugio en la Palabra".

` + refugioStyle + `

TU TAREA: escribir una reflexión del Evangelio que toque el corazón. Incluye
el pasaje en un bloque destacado con borde dorado, una reflexión personal
sobre la vida real (no una exégesis académica), una pregunta para meditar,
una invitación suave a profundizar con Refugio y una breve oración final.

Variable: {{name}}. Escribe SOLO el contenido HTML interno.`,

	models.TypePopeWords: `Eres especialista en comunicación católica para "Refugio en la Palabra".

` + refugioStyle + `

TU TAREA: compartir palabras del Papa de forma accesible y aplicable. Cita en
bloque destacado, dos párrafos sobre qué significa para la vida diaria, una
invitación a la reflexión y un cierre esperanzador. No debe sonar como un
documento oficial del Vaticano.

Variable: {{name}}. Escribe SOLO el contenido HTML interno.`,

	models.TypeNews: `Eres el editor de noticias de fe de "Refugio en la Palabra".

` + refugioStyle + `

TU TAREA: compartir noticias REALES sobre fe y cristianismo con el tono cálido
de Refugio. Para cada noticia proporcionada: título como subtítulo (h3, color
#1F3A5F), resumen en tus propias palabras, enlace exacto con el texto "Leer la
noticia completa →", separador visual. Cierra con una reflexión que conecte
las noticias con la vida de fe del lector. Evita polémicas y política divisiva.

Variable: {{name}}. Escribe SOLO el contenido HTML interno.`,

	models.TypeLaunch: `Eres el equipo de Refugio en la Palabra anunciando el lanzamiento.

` + refugioStyle + `

TU TAREA: escribir el email de lanzamiento. Debe generar emoción genuina,
agradecer la paciencia del usuario, explicar brevemente qué encontrarán, dar
el código de acceso {{code}} en un bloque muy destacado y cerrar con gratitud.

Variables: {{name}}, {{code}}. Escribe SOLO el contenido HTML interno.`,
}

type newsItem struct {
	Title   string
	Link    string
	Source  string
	PubDate string
}

type GenerateController struct {
	DB     *gorm.DB
	Client *openai.Client
	Feeds  *gofeed.Parser
	Logger *log.Logger
}

func NewGenerateController(db *gorm.DB, apiKey string, logger *log.Logger) *GenerateController {
	return &GenerateController{
		DB:     db,
		Client: openai.NewClient(apiKey),
		Feeds:  gofeed.NewParser(),
		Logger: logger,
	}
}

// GenerateDraft asks the model for email copy in the Refugio voice, wraps it
// in the base layout, and optionally stores it as a draft.
func (gc *GenerateController) GenerateDraft(c *fiber.Ctx) error {
	var input struct {
		EmailType    string `json:"email_type" validate:"required"`
		Prompt       string `json:"prompt" validate:"required"`
		SequenceStep *int   `json:"sequence_step"`
		SaveDraft    *bool  `json:"save_draft"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	systemPrompt, ok := systemPrompts[input.EmailType]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Invalid email_type: %s", input.EmailType),
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 60*time.Second)
	defer cancel()

	newsContext := ""
	if input.EmailType == models.TypeNews {
		items := gc.searchRealNews(ctx, input.Prompt)
		newsContext = formatNewsContext(items)
		gc.Logger.Printf("News search returned %d unique items", len(items))
	}

	userPrompt := fmt.Sprintf(`%s

INSTRUCCIONES DEL USUARIO:
%s

IMPORTANTE: Responde ÚNICAMENTE con un JSON válido (sin markdown) con esta estructura exacta:
{
  "subject": "Asunto del email",
  "preview_text": "Texto de vista previa (máx 100 caracteres)",
  "content": "<h2>Título</h2><p>Contenido HTML aquí...</p>"
}`, newsContext, input.Prompt)

	resp, err := gc.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       openai.GPT4oMini,
		Temperature: 0.7,
		MaxTokens:   3000,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		utils.LogError("ai_generation_failed", err, map[string]interface{}{
			"email_type": input.EmailType,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate content",
		})
	}
	if len(resp.Choices) == 0 {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Empty response from model",
		})
	}

	var generated struct {
		Subject     string `json:"subject"`
		PreviewText string `json:"preview_text"`
		Content     string `json:"content"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Choices[0].Message.Content)), &generated); err != nil {
		gc.Logger.Printf("Failed to parse model response: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to parse generated content",
		})
	}
	if generated.Subject == "" || generated.Content == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Incomplete generated content",
		})
	}

	htmlContent := utils.BaseEmailHTML(generated.Content)

	if input.SaveDraft == nil || *input.SaveDraft {
		draft := models.EmailDraft{
			EmailType:      input.EmailType,
			SequenceStep:   input.SequenceStep,
			Subject:        generated.Subject,
			PreviewText:    generated.PreviewText,
			HTMLContent:    htmlContent,
			Source:         models.SourceAIGenerated,
			AIPrompt:       input.Prompt,
			Status:         models.StatusDraft,
			TargetAudience: models.TargetAudience{All: true},
		}
		if err := gc.DB.Create(&draft).Error; err != nil {
			gc.Logger.Printf("Failed to save generated draft: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to save draft",
			})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Draft generated and saved",
			"data":    draft,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Content generated (not saved)",
		"data": fiber.Map{
			"subject":      generated.Subject,
			"preview_text": generated.PreviewText,
			"html_content": htmlContent,
		},
	})
}

// searchRealNews pulls recent faith-related headlines from Google News RSS.
// Failures are not fatal: the model falls back to general content.
func (gc *GenerateController) searchRealNews(ctx context.Context, query string) []newsItem {
	searchTerms := []string{
		"cristianismo noticias",
		"fe católica actualidad",
		query,
	}

	var items []newsItem
	seen := make(map[string]bool)
	for _, term := range searchTerms {
		feedURL := fmt.Sprintf(
			"https://news.google.com/rss/search?q=%s&hl=es-419&gl=ES&ceid=ES:es",
			url.QueryEscape(term),
		)
		feed, err := gc.Feeds.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			gc.Logger.Printf("News feed fetch failed for %q: %v", term, err)
			continue
		}
		for i, entry := range feed.Items {
			if i >= 3 {
				break
			}
			title := strings.TrimSpace(entry.Title)
			if title == "" || seen[title] {
				continue
			}
			seen[title] = true
			source := "Google News"
			if entry.Custom != nil && entry.Custom["source"] != "" {
				source = entry.Custom["source"]
			}
			pubDate := entry.Published
			if pubDate == "" {
				pubDate = time.Now().Format(time.RFC1123)
			}
			items = append(items, newsItem{
				Title:   title,
				Link:    entry.Link,
				Source:  source,
				PubDate: pubDate,
			})
		}
		if len(items) >= 5 {
			break
		}
	}
	if len(items) > 5 {
		items = items[:5]
	}
	return items
}

func formatNewsContext(items []newsItem) string {
	if len(items) == 0 {
		return `NOTA: No se encontraron noticias recientes. Genera un email con contenido inspirador general sobre la fe católica, sin mencionar noticias específicas.`
	}

	var sb strings.Builder
	sb.WriteString("NOTICIAS REALES ENCONTRADAS (usa estas noticias en el email):\n\n")
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. %q\n   Fuente: %s\n   Enlace: %s\n\n", i+1, item.Title, item.Source, item.Link)
	}
	sb.WriteString("IMPORTANTE: menciona TODAS estas noticias, usa los enlaces exactos y no inventes noticias adicionales.")
	return sb.String()
}

var jsonFencePattern = regexp.MustCompile("(?i)```(?:json)?")

// extractJSON strips markdown fences and trims to the outermost JSON object
func extractJSON(text string) string {
	cleaned := jsonFencePattern.ReplaceAllString(text, "")
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return cleaned
	}
	return cleaned[start : end+1]
}
