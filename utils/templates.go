package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/boscogd/waitlist/models"
)

// Embedded transactional templates. Campaign content lives in the database;
// these cover the system emails the app sends on its own behalf.
var emailTemplates = map[string]string{
	"waitlist_confirmation": `<!DOCTYPE html>
<html lang="es">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Bienvenido a Refugio en la Palabra</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Inter', -apple-system, sans-serif; background-color: #FAF7F0;">
    <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
        <div style="text-align: center; margin-bottom: 40px;">
            <h1 style="font-family: 'Lora', Georgia, serif; color: #1F3A5F; font-size: 32px; margin: 0;">Refugio en la Palabra</h1>
        </div>
        <div style="background-color: white; border-radius: 12px; padding: 40px;">
            <h2 style="color: #1F3A5F; font-size: 24px; margin-top: 0;">¡Hola, {{.Name}}!</h2>
            <p style="color: #1F2937; font-size: 16px; line-height: 1.6;">
                Gracias por unirte a la lista de espera de <strong>Refugio en la Palabra</strong>.
            </p>
            <p style="color: #1F2937; font-size: 16px; line-height: 1.6;">
                Hemos guardado tu código de acceso anticipado. Cuando lancemos la aplicación,
                recibirás un email con tu código personalizado para acceder antes que nadie.
            </p>
            <div style="background-color: #FAF7F0; border: 2px dashed #E1B955; border-radius: 8px; padding: 20px; margin: 30px 0; text-align: center;">
                <p style="color: #1F2937; font-size: 14px; margin: 0 0 10px 0;">Tu código de acceso:</p>
                <p style="color: #1F3A5F; font-size: 24px; font-weight: bold; margin: 0; letter-spacing: 2px;">{{.Code}}</p>
            </div>
            <p style="color: #1F2937; font-size: 16px; line-height: 1.6; margin-bottom: 0;">
                Con gratitud,<br><strong>El equipo de Refugio en la Palabra</strong>
            </p>
        </div>
        <div style="text-align: center; margin-top: 30px; color: #6B7280; font-size: 12px;">
            <p style="margin: 5px 0;">© {{.Year}} Refugio en la Palabra. Todos los derechos reservados.</p>
            <p style="margin: 5px 0;">Si deseas darte de baja, responde a este email.</p>
        </div>
    </div>
</body>
</html>`,

	"launch_notification": `<!DOCTYPE html>
<html lang="es">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>¡Refugio en la Palabra ya está disponible!</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Inter', -apple-system, sans-serif; background-color: #FAF7F0;">
    <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
        <div style="text-align: center; margin-bottom: 40px;">
            <h1 style="font-family: 'Lora', Georgia, serif; color: #1F3A5F; font-size: 32px; margin: 0;">Refugio en la Palabra</h1>
        </div>
        <div style="background-color: white; border-radius: 12px; padding: 40px;">
            <h2 style="color: #1F3A5F; font-size: 24px; margin-top: 0;">¡Hola, {{.Name}}! 🎉</h2>
            <p style="color: #1F2937; font-size: 16px; line-height: 1.6;">
                ¡El momento ha llegado! <strong>Refugio en la Palabra</strong> ya está disponible.
            </p>
            <p style="color: #1F2937; font-size: 16px; line-height: 1.6;">
                Como miembro de nuestra lista de espera, tienes acceso anticipado exclusivo.
                Usa tu código personal a continuación para comenzar tu viaje espiritual.
            </p>
            <div style="background-color: #FAF7F0; border: 2px solid #E1B955; border-radius: 8px; padding: 30px; margin: 30px 0; text-align: center;">
                <p style="color: #1F2937; font-size: 14px; margin: 0 0 15px 0;">Tu código de bienvenida:</p>
                <p style="color: #1F3A5F; font-size: 28px; font-weight: bold; margin: 0; letter-spacing: 2px;">{{.Code}}</p>
            </div>
            <div style="text-align: center; margin: 30px 0;">
                <a href="{{.AppURL}}/bienvenida?code={{.Code}}"
                   style="display: inline-block; background-color: #1F3A5F; color: white; padding: 16px 32px; text-decoration: none; border-radius: 8px; font-size: 16px;">
                    Acceder ahora
                </a>
            </div>
            <p style="color: #1F2937; font-size: 16px; line-height: 1.6; margin-bottom: 0;">
                Con gratitud y bendiciones,<br><strong>El equipo de Refugio en la Palabra</strong>
            </p>
        </div>
        <div style="text-align: center; margin-top: 30px; color: #6B7280; font-size: 12px;">
            <p style="margin: 5px 0;">© {{.Year}} Refugio en la Palabra. Todos los derechos reservados.</p>
        </div>
    </div>
</body>
</html>`,

	"feedback_notification": `<!DOCTYPE html>
<html lang="es">
<head>
    <meta charset="UTF-8">
    <title>Nuevo Feedback del MVP</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Inter', -apple-system, sans-serif; background-color: #FAF7F0;">
    <div style="max-width: 700px; margin: 0 auto; padding: 40px 20px;">
        <div style="text-align: center; margin-bottom: 30px;">
            <h1 style="font-family: 'Lora', Georgia, serif; color: #1F3A5F; font-size: 28px; margin: 0;">Nuevo Feedback Recibido</h1>
            <p style="color: #6B7280; font-size: 14px; margin-top: 8px;">ID: {{.FeedbackID}}</p>
        </div>
        <div style="background-color: white; border-radius: 12px; padding: 32px;">
            {{if .Stars}}
            <div style="background-color: #FAF7F0; border-left: 4px solid #E1B955; border-radius: 8px; padding: 20px; margin-bottom: 24px;">
                <h3 style="color: #1F3A5F; font-size: 16px; margin: 0 0 8px 0;">Calificación General</h3>
                <p style="font-size: 24px; margin: 0; letter-spacing: 4px;">{{.Stars}}</p>
            </div>
            {{end}}
            {{if .WhatYouLike}}
            <div style="margin-bottom: 24px;">
                <h3 style="color: #059669; font-size: 16px; margin: 0 0 8px 0;">✅ Lo que les gusta</h3>
                <p style="color: #1F2937; font-size: 15px; line-height: 1.6; white-space: pre-wrap;">{{.WhatYouLike}}</p>
            </div>
            {{end}}
            {{if .WhatYouDontLike}}
            <div style="margin-bottom: 24px;">
                <h3 style="color: #DC2626; font-size: 16px; margin: 0 0 8px 0;">❌ Lo que no les gusta</h3>
                <p style="color: #1F2937; font-size: 15px; line-height: 1.6; white-space: pre-wrap;">{{.WhatYouDontLike}}</p>
            </div>
            {{end}}
            {{if .WhatToImprove}}
            <div style="margin-bottom: 24px;">
                <h3 style="color: #2563EB; font-size: 16px; margin: 0 0 8px 0;">💡 Sugerencias de mejora</h3>
                <p style="color: #1F2937; font-size: 15px; line-height: 1.6; white-space: pre-wrap;">{{.WhatToImprove}}</p>
            </div>
            {{end}}
            {{if .AdditionalComments}}
            <div style="margin-bottom: 24px;">
                <h3 style="color: #7C3AED; font-size: 16px; margin: 0 0 8px 0;">💬 Comentarios adicionales</h3>
                <p style="color: #1F2937; font-size: 15px; line-height: 1.6; white-space: pre-wrap;">{{.AdditionalComments}}</p>
            </div>
            {{end}}
            <div style="text-align: center; margin-top: 32px; padding-top: 24px; border-top: 1px solid #E5E7EB;">
                <a href="{{.SiteURL}}/admin/feedback"
                   style="display: inline-block; background-color: #1F3A5F; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; font-size: 14px;">
                    Ver todos los feedbacks
                </a>
            </div>
        </div>
        <div style="text-align: center; margin-top: 24px; color: #6B7280; font-size: 12px;">
            <p style="margin: 5px 0;">Refugio en la Palabra - Panel de Administración</p>
        </div>
    </div>
</body>
</html>`,
}

// RenderSystemTemplate executes one of the embedded transactional templates
func RenderSystemTemplate(name string, data interface{}) (string, error) {
	source, ok := emailTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	tmpl, err := template.New(name).Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// SendWaitlistConfirmation emails the signup confirmation with the entry's
// access code.
func SendWaitlistConfirmation(mailer Mailer, entry models.WaitlistEntry) (string, error) {
	html, err := RenderSystemTemplate("waitlist_confirmation", struct {
		Name string
		Code string
		Year int
	}{entry.Name, entry.Code, time.Now().Year()})
	if err != nil {
		return "", err
	}
	return mailer.Send(OutgoingEmail{
		To:          entry.Email,
		Subject:     "¡Bienvenido a Refugio en la Palabra!",
		HTMLContent: html,
	})
}

// SendLaunchNotification emails the launch announcement with the entry's
// access code and a link into the app.
func SendLaunchNotification(mailer Mailer, entry models.WaitlistEntry, appURL string) (string, error) {
	html, err := RenderSystemTemplate("launch_notification", struct {
		Name   string
		Code   string
		AppURL string
		Year   int
	}{entry.Name, entry.Code, appURL, time.Now().Year()})
	if err != nil {
		return "", err
	}
	return mailer.Send(OutgoingEmail{
		To:          entry.Email,
		Subject:     "¡Refugio en la Palabra ya está disponible!",
		HTMLContent: html,
	})
}

// SendFeedbackNotification forwards a feedback submission to the admin inbox
func SendFeedbackNotification(mailer Mailer, feedback models.Feedback, adminEmail, siteURL string) (string, error) {
	if adminEmail == "" {
		return "", fmt.Errorf("admin email not configured")
	}

	stars := ""
	subject := "Nuevo Feedback MVP - Sin calificación"
	if feedback.Rating != nil {
		stars = strings.Repeat("⭐", *feedback.Rating) + strings.Repeat("☆", 5-*feedback.Rating)
		subject = fmt.Sprintf("Nuevo Feedback MVP - ⭐ %d/5", *feedback.Rating)
	}

	html, err := RenderSystemTemplate("feedback_notification", struct {
		FeedbackID         uint
		Stars              string
		WhatYouLike        string
		WhatYouDontLike    string
		WhatToImprove      string
		AdditionalComments string
		SiteURL            string
	}{feedback.ID, stars, feedback.WhatYouLike, feedback.WhatYouDontLike, feedback.WhatToImprove, feedback.AdditionalComments, siteURL})
	if err != nil {
		return "", err
	}
	return mailer.Send(OutgoingEmail{
		To:          adminEmail,
		Subject:     subject,
		HTMLContent: html,
	})
}

// BaseEmailHTML wraps AI-generated body content in the standard campaign shell
func BaseEmailHTML(innerContent string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="es">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: 'Inter', -apple-system, sans-serif; background-color: #FAF7F0;">
    <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
        <div style="text-align: center; margin-bottom: 40px;">
            <h1 style="font-family: 'Lora', Georgia, serif; color: #1F3A5F; font-size: 32px; margin: 0;">Refugio en la Palabra</h1>
        </div>
        <div style="background-color: white; border-radius: 12px; padding: 40px; color: #1F2937; font-size: 16px; line-height: 1.6;">
%s
        </div>
        <div style="text-align: center; margin-top: 30px; color: #6B7280; font-size: 12px;">
            <p style="margin: 5px 0;">Refugio en la Palabra</p>
            <p style="margin: 5px 0;">Si deseas darte de baja, responde a este email.</p>
        </div>
    </div>
</body>
</html>`, innerContent)
}
