package service

import (
	"context"
	"time"

	"github.com/liliang-cn/sitechat/internal/domain"
	"go.uber.org/zap"
)

// ChatService runs the chat pipeline: prompt, completion, intent check and
// the optional booking call, strictly in that order.
type ChatService struct {
	prompt     *PromptAssembler
	completion CompletionProvider
	booking    BookingProvider
	formatter  *AppointmentFormatter
	logger     *zap.Logger
}

// ChatServiceOptions are the dependencies of a ChatService.
// A nil Booking disables the booking path.
type ChatServiceOptions struct {
	Prompt     *PromptAssembler
	Completion CompletionProvider
	Booking    BookingProvider
	Formatter  *AppointmentFormatter
	Logger     *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(opts ChatServiceOptions) *ChatService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prompt := opts.Prompt
	if prompt == nil {
		prompt = NewPromptAssembler("", "")
	}
	formatter := opts.Formatter
	if formatter == nil {
		var err error
		if formatter, err = NewAppointmentFormatter(""); err != nil {
			logger.Warn("Falling back to UTC for appointment times", zap.Error(err))
			formatter = &AppointmentFormatter{loc: time.UTC}
		}
	}
	return &ChatService{
		prompt:     prompt,
		completion: opts.Completion,
		booking:    opts.Booking,
		formatter:  formatter,
		logger:     logger,
	}
}

// Chat answers the conversation. Only completion failures are returned as
// errors; booking failures become an apologetic answer.
func (s *ChatService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	messages := s.prompt.Assemble(req.Messages)

	text, err := s.completion.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	intent, ok := DetectBookingIntent(text)
	if !ok || s.booking == nil {
		return &domain.ChatResponse{Answer: text}, nil
	}

	s.logger.Info("Booking intent detected, forwarding to webhook",
		zap.Int("duration_minutes", intent.Request.Constraints.DurationMinutes),
		zap.String("from_date", intent.Request.Constraints.FromDate),
		zap.String("to_date", intent.Request.Constraints.ToDate),
	)

	outcome := s.booking.Book(ctx, intent)
	answer := s.formatter.BookingAnswer(outcome.Result, intent.Request.User)

	s.logger.Info("Booking webhook answered",
		zap.Bool("ok", outcome.Result.OK),
		zap.Bool("confirmed", outcome.Result.Confirmed()),
		zap.String("code", string(outcome.Result.Code)),
	)

	return &domain.ChatResponse{Answer: answer, Raw: outcome.Raw}, nil
}
