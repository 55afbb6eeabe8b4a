package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/dasmlab/pharmagen/pkg/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Query is one user question.
type Query struct {
	RawText string
	// LanguageTag is optional; empty selects the default language.
	LanguageTag string
}

// Answer is the displayable result of a query.
type Answer struct {
	RequestID string
	Text      string
	Language  Language
}

// Assistant runs the question pipeline: normalize, resolve the language,
// build the prompt, submit it and format the response.
type Assistant struct {
	// Client is the model backend, constructed once at process start.
	Client model.Client

	// Languages resolves language tags.
	Languages *Languages

	// Logger for pipeline operations.
	Logger *logrus.Logger

	chunkSize int
}

// New creates an Assistant around an already constructed model client.
func New(client model.Client, languages *Languages, logger *logrus.Logger) *Assistant {
	if logger == nil {
		logger = logrus.New()
	}
	if languages == nil {
		languages, _ = NewLanguages(DefaultLanguageCode)
	}

	return &Assistant{
		Client:    client,
		Languages: languages,
		Logger:    logger,
		chunkSize: DefaultChunkSize,
	}
}

// Ask answers a single question. Input and language errors are returned
// before the model is contacted; model failures are passed through as
// *model.Error.
func (a *Assistant) Ask(ctx context.Context, q Query) (Answer, error) {
	answer := Answer{RequestID: uuid.New().String()}
	log := a.Logger.WithFields(logrus.Fields{
		"request_id": answer.RequestID,
	})

	text, err := Normalize(q.RawText)
	if err != nil {
		recordQuery(err)
		log.WithError(err).Debug("Rejected query input")
		return answer, err
	}

	lang, err := a.Languages.Resolve(q.LanguageTag)
	if err != nil {
		recordQuery(err)
		log.WithError(err).WithFields(logrus.Fields{
			"language_tag": q.LanguageTag,
		}).Debug("Rejected query language")
		return answer, err
	}
	answer.Language = lang

	log = log.WithFields(logrus.Fields{
		"language":    lang.Code,
		"text_length": len(text),
	})
	log.Debug("Query received")

	startTime := time.Now()
	answer.Text, err = a.Complete(ctx, BuildPrompt(text, lang.Directive()))
	recordQuery(err)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"outcome":     outcome(err),
			"duration_ms": time.Since(startTime).Milliseconds(),
		}).Warn("Query failed")
		return answer, err
	}

	log.WithFields(logrus.Fields{
		"answer_length": len(answer.Text),
		"duration_ms":   time.Since(startTime).Milliseconds(),
	}).Info("Query answered")
	return answer, nil
}

// Complete submits a prompt and formats the response.
func (a *Assistant) Complete(ctx context.Context, p model.Prompt) (string, error) {
	if a.Client == nil {
		return "", &model.Error{Kind: model.KindUnavailable, Detail: "no model client configured"}
	}
	return Format(a.Client.Submit(ctx, p))
}

// IsInputError reports whether err was caused by the user's input rather
// than by the model.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrUnsupportedLanguage)
}
