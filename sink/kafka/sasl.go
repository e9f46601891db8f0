package kafka

import (
	"crypto/sha256"
	"crypto/sha512"
	"strings"

	"github.com/IBM/sarama"
	"github.com/xdg-go/scram"
)

// Mechanism selects a SASL authentication mechanism for the Kafka sink.
type Mechanism string

const (
	MechanismPlain       Mechanism = "PLAIN"
	MechanismScramSHA256 Mechanism = "SCRAM-SHA-256"
	MechanismScramSHA512 Mechanism = "SCRAM-SHA-512"
)

// SASLConfig configures SASL/PLAIN or SASL/SCRAM authentication, grounded
// on internal/sinks/kafka_scram.go's xdg-go/scram client adapter.
type SASLConfig struct {
	Username  string
	Password  string
	Mechanism Mechanism
}

func (c *SASLConfig) apply(cfg *sarama.Config) error {
	cfg.Net.SASL.Enable = true
	cfg.Net.SASL.User = c.Username
	cfg.Net.SASL.Password = c.Password

	switch Mechanism(strings.ToUpper(string(c.Mechanism))) {
	case MechanismScramSHA256:
		cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &xdgSCRAMClient{hashGeneratorFcn: sha256.New}
		}
	case MechanismScramSHA512:
		cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &xdgSCRAMClient{hashGeneratorFcn: sha512.New}
		}
	default:
		cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	}
	return nil
}

// xdgSCRAMClient adapts xdg-go/scram to sarama's SCRAMClient interface.
type xdgSCRAMClient struct {
	*scram.Client
	*scram.ClientConversation
	hashGeneratorFcn scram.HashGeneratorFcn
}

func (x *xdgSCRAMClient) Begin(userName, password, authzID string) (err error) {
	x.Client, err = x.hashGeneratorFcn.NewClient(userName, password, authzID)
	if err != nil {
		return err
	}
	x.ClientConversation = x.Client.NewConversation()
	return nil
}

func (x *xdgSCRAMClient) Step(challenge string) (string, error) {
	return x.ClientConversation.Step(challenge)
}

func (x *xdgSCRAMClient) Done() bool {
	return x.ClientConversation.Done()
}
