package processor

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/cnft-minter/pkg/metrics"
	"github.com/code-payments/cnft-minter/pkg/solana"
	"github.com/code-payments/cnft-minter/pkg/solana/cnftminter"
)

const (
	metricsStructName = "processor"

	collectionCreatedEventName = "CollectionCreated"
	memberMintedEventName      = "CollectionMemberMinted"
)

// Processor executes collection minter instructions. It is stateless beyond
// its configuration, so a single instance can be deployed to any number of
// ledgers.
type Processor struct {
	log  *logrus.Entry
	conf *conf
}

func NewProcessor(configProvider ConfigProvider) *Processor {
	return &Processor{
		log:  logrus.StandardLogger().WithField("type", "processor"),
		conf: configProvider(),
	}
}

// Process is the program entrypoint and satisfies solana.ProgramFunc. The
// leading byte of data selects the instruction.
func (p *Processor) Process(ctx context.Context, rt solana.Runtime, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return p.onError(rt, p.log.WithField("method", "Process"), solana.ErrInvalidInstructionData)
	}

	instructionType := cnftminter.InstructionType(data[0])
	log := p.log.WithFields(logrus.Fields{
		"method":      "Process",
		"program":     base58.Encode(programID),
		"instruction": instructionType.String(),
	})

	var err error
	switch instructionType {
	case cnftminter.InstructionTypeCreateCollection:
		err = p.createCollection(ctx, rt, log, programID, accounts, data[1:])
	case cnftminter.InstructionTypeMint:
		err = p.mint(ctx, rt, log, programID, accounts, data[1:])
	default:
		err = solana.ErrInvalidArgument
	}

	if err != nil {
		return p.onError(rt, log, err)
	}
	return nil
}

func (p *Processor) onError(rt solana.Runtime, log *logrus.Entry, err error) error {
	err = solana.ToProgramError(err)

	message := err.Error()
	if code, ok := err.(solana.CustomError); ok {
		message = cnftminter.ErrorMessage(code)
	}

	log.WithError(err).Info("instruction failed")
	rt.Log("Error: %s", message)
	return err
}

// deriveAddress re-derives an address from seeds and checks it against the
// supplied account, returning the bump on a match.
func deriveAddress(programID ed25519.PublicKey, supplied *solana.AccountInfo, mismatch error, seeds ...[]byte) (uint8, error) {
	address, bump, err := solana.FindProgramAddressAndBump(programID, seeds...)
	if err != nil {
		return 0, err
	}
	if !solana.KeysEqual(address, supplied.Key) {
		return 0, mismatch
	}
	return bump, nil
}

func traceInstruction(ctx context.Context, method string, attributes map[string]interface{}) *metrics.MethodTracer {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, method)
	tracer.AddAttributes(attributes)
	return tracer
}

// nextAccounts assigns accounts from it, in order, to each of dst.
func nextAccounts(it *solana.AccountIterator, dst ...**solana.AccountInfo) error {
	for _, d := range dst {
		account, err := it.Next()
		if err != nil {
			return err
		}
		*d = account
	}
	return nil
}
