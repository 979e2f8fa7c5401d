package registration

import (
	"context"
	"errors"
	"time"

	"bluemercantile/internal/constant"
	"bluemercantile/internal/logic/notify"
	"bluemercantile/internal/model"
	"bluemercantile/internal/svc"
	"bluemercantile/internal/types"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

// ErrRegistrationNotFound is returned by Approve/Reject when the id is not in
// the pending collection. Handlers turn it into a 404 response.
var ErrRegistrationNotFound = errors.New("registration not found")

type RegistrationLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewRegistrationLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RegistrationLogic {
	return &RegistrationLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// Submit stores a new registration in the pending collection. No field
// validation and no duplicate detection: repeated submissions simply coexist
// as separate pending entries.
func (l *RegistrationLogic) Submit(req *types.RegisterReq) (*types.RegisterResp, error) {
	l.Infof("--- 开始处理 /register 请求, userType: %s ---", req.UserType)

	registration := model.Registration{
		Id:            "reg_" + uuid.NewString(),
		UserType:      req.UserType,
		FullName:      req.FullName,
		EntityType:    req.EntityType,
		NgoRegId:      req.NgoRegId,
		Vp:            req.Vp,
		Mobile:        req.Mobile,
		Email:         req.Email,
		AadharId:      req.AadharId,
		Address:       req.Address,
		Pincode:       req.Pincode,
		State:         req.State,
		WalletAddress: req.WalletAddress,
		SubmittedAt:   time.Now().UTC().Format(time.RFC3339),
		Status:        constant.StatusPending,
	}

	err := l.svcCtx.Registry.MutatePending(l.ctx, func(list []model.Registration) ([]model.Registration, error) {
		return append(list, registration), nil
	})
	if err != nil {
		l.Errorf("保存待审核注册失败: %v", err)
		return nil, err
	}

	l.Infof("注册已入库: %s", registration.Id)
	return &types.RegisterResp{
		Success:        true,
		Message:        "Registration submitted successfully. Admin approval required.",
		RegistrationId: registration.Id,
	}, nil
}

// Approve promotes a pending registration to an approved user. The pending
// entry is claimed first (the CAS write is the decision point, so two racing
// approvals cannot both mint credentials), then the approved record lands
// with notified=false, then the credentials email is recorded. A failed email
// step is retried later by the approval sweeper.
func (l *RegistrationLogic) Approve(registrationId string) (*types.ApproveRegistrationResp, error) {
	l.Infof("--- 审批注册 %s ---", registrationId)

	// 1. 从待审核集合中认领该条目
	var claimed model.Registration
	err := l.svcCtx.Registry.MutatePending(l.ctx, func(list []model.Registration) ([]model.Registration, error) {
		for i := range list {
			if list[i].Id == registrationId {
				claimed = list[i]
				return append(list[:i], list[i+1:]...), nil
			}
		}
		return nil, ErrRegistrationNotFound
	})
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			return nil, err
		}
		l.Errorf("认领待审核注册失败: %v", err)
		return nil, err
	}

	// 2. 签发凭证
	userId := GenerateUserID(claimed.UserType)
	password := GeneratePassword()
	l.Infof("凭证已生成: userId=%s", userId)

	approved := model.ApprovedUser{
		Registration: claimed,
		UserId:       userId,
		Password:     password,
		Banned:       false,
		Notified:     false,
		ApprovedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	approved.Status = constant.StatusApproved

	// 3. 写入已审批集合（durable 的"已审批未通知"状态）
	err = l.svcCtx.Registry.MutateApproved(l.ctx, func(list []model.ApprovedUser) ([]model.ApprovedUser, error) {
		return append(list, approved), nil
	})
	if err != nil {
		l.Errorf("写入已审批用户失败: %v", err)
		// 写入失败时把已认领的条目放回待审核集合，避免注册记录两边都丢失
		restoreErr := l.svcCtx.Registry.MutatePending(l.ctx, func(list []model.Registration) ([]model.Registration, error) {
			return append(list, claimed), nil
		})
		if restoreErr != nil {
			l.Errorf("恢复待审核条目失败: %v", restoreErr)
		}
		return nil, err
	}

	// 4. 记录凭证邮件并标记已通知；失败交给补发任务
	if mailErr := l.svcCtx.Notifier.SendApproval(l.ctx, approved); mailErr != nil {
		l.Errorf("审批邮件记录失败（等待补发）: %v", mailErr)
	} else if markErr := notify.MarkNotified(l.ctx, l.svcCtx.Registry, userId); markErr != nil {
		l.Errorf("更新 notified 标记失败: %v", markErr)
	}

	l.Infof("--- 注册 %s 审批完成, userId=%s ---", registrationId, userId)
	return &types.ApproveRegistrationResp{
		Success:  true,
		Message:  "Registration approved successfully",
		UserId:   userId,
		Password: password,
	}, nil
}

// Reject removes a pending registration and records the rejection email with
// the admin-supplied reason. The registration itself is discarded: there is no
// archive of rejected applications.
func (l *RegistrationLogic) Reject(registrationId, reason string) error {
	l.Infof("--- 驳回注册 %s ---", registrationId)

	var claimed model.Registration
	err := l.svcCtx.Registry.MutatePending(l.ctx, func(list []model.Registration) ([]model.Registration, error) {
		for i := range list {
			if list[i].Id == registrationId {
				claimed = list[i]
				return append(list[:i], list[i+1:]...), nil
			}
		}
		return nil, ErrRegistrationNotFound
	})
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			return err
		}
		l.Errorf("移除待审核注册失败: %v", err)
		return err
	}

	if mailErr := l.svcCtx.Notifier.SendRejection(l.ctx, claimed, reason); mailErr != nil {
		// 记录已被移除，邮件尽力而为
		l.Errorf("驳回邮件记录失败: %v", mailErr)
	}

	l.Infof("--- 注册 %s 已驳回 ---", registrationId)
	return nil
}
