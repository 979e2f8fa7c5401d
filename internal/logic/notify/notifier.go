package notify

import (
	"context"
	"fmt"
	"time"

	"bluemercantile/internal/constant"
	"bluemercantile/internal/model"

	"github.com/zeromicro/go-zero/core/logx"
)

// Notifier records outbound notification content for audit/display.
// 并不真正发送邮件，只是把内容写入 email_logs 集合，和原有行为一致。
type Notifier struct {
	store *model.RegistryStore
}

func NewNotifier(store *model.RegistryStore) *Notifier {
	return &Notifier{store: store}
}

// SendEmail appends one entry to the email log. One entry per attempt,
// never mutated or deleted afterwards.
func (n *Notifier) SendEmail(ctx context.Context, to, subject, content string) error {
	logx.WithContext(ctx).Infof("EMAIL TO: %s, SUBJECT: %s", to, subject)

	return n.store.AppendEmailLog(ctx, model.EmailLogEntry{
		To:        to,
		Subject:   subject,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}

// SendApproval sends the credentials mail for a freshly approved user.
func (n *Notifier) SendApproval(ctx context.Context, user model.ApprovedUser) error {
	content := fmt.Sprintf(`Dear %s,

Your BlueMercantile account has been approved!

Your login credentials:
User ID: %s
Password: %s

You can now login to your account and start using BlueMercantile.

Best regards,
BlueMercantile Team`, user.FullName, user.UserId, user.Password)

	return n.SendEmail(ctx, user.Email, constant.SubjectApproved, content)
}

// SendRejection sends the rejection mail with the admin-supplied reason.
// The reason is not persisted anywhere beyond this log entry.
func (n *Notifier) SendRejection(ctx context.Context, reg model.Registration, reason string) error {
	content := fmt.Sprintf(`Dear %s,

Unfortunately, your BlueMercantile registration has been rejected.

Reason: %s

If you have any questions, please contact our support team.

Best regards,
BlueMercantile Team`, reg.FullName, reason)

	return n.SendEmail(ctx, reg.Email, constant.SubjectRejected, content)
}
