package ticketpass

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/skip2/go-qrcode"

	"smartq/internal/models"
)

// Generator produces the encrypted QR pass handed to a customer when
// they join a queue. The salon scans it at the counter to pull up the
// entry without trusting anything the customer typed.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

type passPayload struct {
	EntryID    string `json:"entry_id"`
	SalonID    string `json:"salon_id"`
	CustomerID string `json:"customer_id"`
	Position   int    `json:"position"`
}

// GeneratePass encrypts the entry reference and renders it as a PNG QR
// code.
func (g *Generator) GeneratePass(entry models.QueueEntry) ([]byte, error) {
	data, err := json.Marshal(passPayload{
		EntryID:    entry.ID,
		SalonID:    entry.SalonID,
		CustomerID: entry.CustomerID,
		Position:   entry.Position,
	})
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, g.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
