package ports

import "context"

type OTPSender interface {
	SendOTP(ctx context.Context, email, code string) error
}
