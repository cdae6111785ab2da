// File: /services/email_service.go
package services

import (
	"crypto/rand"
	"fmt"
	"gopkg.in/gomail.v2"
	"math/big"
	"sync"
	"time"
	"tripcrew-api/config"
)

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer

	// In-memory storage for verification and reset codes
	verificationCodes map[string]VerificationCode
	resetCodes        map[string]VerificationCode
	mutex             sync.RWMutex
}

type VerificationCode struct {
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	service := &EmailService{
		config:            cfg,
		dialer:            dialer,
		verificationCodes: make(map[string]VerificationCode),
		resetCodes:        make(map[string]VerificationCode),
	}

	// Start cleanup goroutine
	go service.cleanupExpiredCodes()

	return service
}

// Generate a random 4-digit code
func (es *EmailService) generateCode() string {
	const digits = "0123456789"
	code := make([]byte, 4)

	for i := range code {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		code[i] = digits[num.Int64()]
	}

	return string(code)
}

func (es *EmailService) issueCode(store map[string]VerificationCode, email string) string {
	es.mutex.Lock()
	defer es.mutex.Unlock()

	existing, exists := store[email]
	if exists && !existing.Used && time.Now().Before(existing.ExpiresAt) {
		// Reuse existing valid code
		return existing.Code
	}

	code := es.generateCode()
	store[email] = VerificationCode{
		Code:      code,
		Email:     email,
		ExpiresAt: time.Now().Add(10 * time.Minute),
		Used:      false,
	}
	return code
}

func (es *EmailService) consumeCode(store map[string]VerificationCode, email, inputCode string) bool {
	es.mutex.Lock()
	defer es.mutex.Unlock()

	stored, exists := store[email]
	if !exists || stored.Used {
		return false
	}

	if time.Now().After(stored.ExpiresAt) {
		delete(store, email)
		return false
	}

	if stored.Code != inputCode {
		return false
	}

	stored.Used = true
	store[email] = stored
	return true
}

// Send verification email
func (es *EmailService) SendVerificationEmail(email, name string) (string, error) {
	code := es.issueCode(es.verificationCodes, email)

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "TripCrew - Email Verification")

	textBody := fmt.Sprintf(`
Hello %s!

Welcome to TripCrew! Please verify your email address to complete your registration.

Your verification code is: %s

This code will expire in 10 minutes.

Enter this code in the TripCrew app to verify your email address.

If you didn't create an account with TripCrew, please ignore this email.

Safe travels!
The TripCrew Team
    `, name, code)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", es.htmlTemplate("Email Verification",
		fmt.Sprintf("Hello %s! Welcome to TripCrew! Please verify your email address to complete your registration.", name),
		code))

	if err := es.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	fmt.Printf("Verification email sent to %s\n", email)
	return code, nil
}

// Verify the registration code
func (es *EmailService) VerifyCode(email, inputCode string) bool {
	return es.consumeCode(es.verificationCodes, email, inputCode)
}

// SendPasswordResetEmail mails a one-time reset code to the user.
func (es *EmailService) SendPasswordResetEmail(email, name string) (string, error) {
	code := es.issueCode(es.resetCodes, email)

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "TripCrew - Password Reset")

	textBody := fmt.Sprintf(`
Hello %s!

We received a request to reset your TripCrew password.

Your password reset code is: %s

This code will expire in 10 minutes.

If you didn't request a password reset, please ignore this email.

The TripCrew Team
    `, name, code)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", es.htmlTemplate("Password Reset",
		fmt.Sprintf("Hello %s! We received a request to reset your TripCrew password.", name),
		code))

	if err := es.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	fmt.Printf("Password reset email sent to %s\n", email)
	return code, nil
}

// VerifyResetCode consumes a password-reset code.
func (es *EmailService) VerifyResetCode(email, inputCode string) bool {
	return es.consumeCode(es.resetCodes, email, inputCode)
}

// Get verification code for testing/debugging
func (es *EmailService) GetVerificationCode(email string) string {
	es.mutex.RLock()
	defer es.mutex.RUnlock()

	if code, exists := es.verificationCodes[email]; exists && !code.Used && time.Now().Before(code.ExpiresAt) {
		return code.Code
	}
	return ""
}

func (es *EmailService) htmlTemplate(title, greeting, code string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #0a7d5f; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .code { background: #e9ecef; padding: 20px; text-align: center; border-radius: 8px; margin: 20px 0; }
        .code-number { font-size: 32px; font-weight: bold; color: #0a7d5f; letter-spacing: 8px; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>TripCrew</h1>
            <p>%s</p>
        </div>
        <div class="content">
            <p>%s</p>

            <div class="code">
                <p><strong>Your code is:</strong></p>
                <div class="code-number">%s</div>
                <p><small>This code will expire in 10 minutes.</small></p>
            </div>

            <p><strong>The TripCrew Team</strong></p>
        </div>
        <div class="footer">
            <p>This is an automated email, please do not reply.</p>
        </div>
    </div>
</body>
</html>`, title, title, greeting, code)
}

// Send welcome email after successful verification
func (es *EmailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to TripCrew!")

	textBody := fmt.Sprintf(`
Hello %s!

Your email is verified and your TripCrew account is ready.

Browse upcoming trips, request to join the ones you like, or organize your own and approve your crew.

Safe travels!
The TripCrew Team
    `, name)

	m.SetBody("text/plain", textBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// Cleanup expired verification codes
func (es *EmailService) cleanupExpiredCodes() {
	ticker := time.NewTicker(5 * time.Minute) // Run every 5 minutes
	defer ticker.Stop()

	for range ticker.C {
		es.mutex.Lock()
		now := time.Now()
		for _, store := range []map[string]VerificationCode{es.verificationCodes, es.resetCodes} {
			for email, code := range store {
				if now.After(code.ExpiresAt) || code.Used {
					delete(store, email)
				}
			}
		}
		es.mutex.Unlock()
	}
}
