package email

import (
	"bytes"
	"html/template"
	"time"
)

const OTPSubject = "Your IntervuAI Verification Code"

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
  <h2 style="color: #2563eb;">Welcome to IntervuAI!</h2>
  <p>Hi <strong>{{.Name}}</strong>, use the code below to verify your email address:</p>
  <div style="font-size: 40px; font-weight: bold; letter-spacing: 12px; color: #2563eb; text-align: center; padding: 24px 16px;">{{.Code}}</div>
  <p style="color: #6b7280; font-size: 14px;">This code expires in <strong>{{.Minutes}} minutes</strong>.</p>
  <p style="color: #6b7280; font-size: 14px;">If you didn't request this, you can safely ignore this email.</p>
  <p style="color: #9ca3af; font-size: 12px; text-align: center;">&copy; {{.Year}} IntervuAI</p>
</div>`))

// RenderOTP renders the verification email body.
func RenderOTP(name, code string, ttl time.Duration) (string, error) {
	if name == "" {
		name = "there"
	}
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, map[string]any{
		"Name":    name,
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
		"Year":    time.Now().Year(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
