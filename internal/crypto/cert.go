// Package crypto creates the self-signed certificate used when the web
// form is served over TLS without a configured certificate.
package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"strings"
	"time"

	"github.com/yuzeguitarist/qrforge/internal/app"
)

// GenerateSelfSigned creates an ECDSA P-256 certificate for the given IPs
// and DNS names. pin is the colon-separated SHA-256 fingerprint browsers
// show when asking the user to trust it.
func GenerateSelfSigned(ipAddrs []net.IP, dnsNames []string, validDays int) (certPEM, keyPEM []byte, pin string, err error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, "", err
	}

	serialLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, serialLimit)
	if err != nil {
		return nil, nil, "", err
	}

	notBefore := time.Now().Add(-5 * time.Minute)
	notAfter := time.Now().Add(time.Duration(validDays) * 24 * time.Hour)

	tpl := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   app.Name + "-selfsigned",
			Organization: []string{app.Name},
		},
		NotBefore: notBefore,
		NotAfter:  notAfter,

		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,

		IPAddresses: ipAddrs,
		DNSNames:    dnsNames,
	}

	der, err := x509.CreateCertificate(rand.Reader, &tpl, &tpl, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, "", err
	}
	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	keyDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, "", err
	}
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM, fingerprint(der), nil
}

// LoadOrGenerate returns the key pair from certFile and keyFile when both
// are set, otherwise a fresh self-signed certificate for ips.
func LoadOrGenerate(certFile, keyFile string, ips []net.IP) (tls.Certificate, string, error) {
	var certPEM, keyPEM []byte
	var err error
	if certFile != "" && keyFile != "" {
		if certPEM, err = os.ReadFile(certFile); err != nil {
			return tls.Certificate{}, "", err
		}
		if keyPEM, err = os.ReadFile(keyFile); err != nil {
			return tls.Certificate{}, "", err
		}
	} else {
		if certPEM, keyPEM, _, err = GenerateSelfSigned(ips, []string{"localhost"}, 365); err != nil {
			return tls.Certificate{}, "", err
		}
	}
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, "", err
	}
	pin, err := ParseCertPin(certPEM)
	return cert, pin, err
}

// ParseCertPin returns the fingerprint of the first certificate in certPEM.
func ParseCertPin(certPEM []byte) (string, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return "", fmt.Errorf("invalid PEM")
	}
	return fingerprint(block.Bytes), nil
}

func fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	pin := strings.ToUpper(hex.EncodeToString(sum[:]))
	parts := make([]string, 0, len(sum))
	for i := 0; i < len(pin); i += 2 {
		parts = append(parts, pin[i:i+2])
	}
	return strings.Join(parts, ":")
}
