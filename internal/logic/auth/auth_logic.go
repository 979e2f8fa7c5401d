package auth

import (
	"context"
	"errors"
	"time"

	"bluemercantile/internal/svc"
	"bluemercantile/internal/types"

	"github.com/golang-jwt/jwt/v4"
	"github.com/zeromicro/go-zero/core/logx"
)

// ErrInvalidCredentials covers both an unknown login and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserBanned is returned when a banned user tries to log in.
var ErrUserBanned = errors.New("account is banned")

type AuthLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewAuthLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AuthLogic {
	return &AuthLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// AdminLogin checks the configured admin credentials and issues a token.
func (l *AuthLogic) AdminLogin(req *types.AdminLoginReq) (*types.AdminLoginResp, error) {
	if req.Username != l.svcCtx.Config.Admin.Username || req.Password != l.svcCtx.Config.Admin.Password {
		l.Infof("管理员登录失败: %s", req.Username)
		return nil, ErrInvalidCredentials
	}

	token, err := l.issueToken("admin", "admin")
	if err != nil {
		return nil, err
	}

	l.Info("管理员登录成功")
	return &types.AdminLoginResp{
		Success:  true,
		Token:    token,
		UserType: "admin",
	}, nil
}

// UserLogin scans the approved users for a userId/password match. Plaintext
// compare, matching how the credentials are stored. Banned users are refused.
func (l *AuthLogic) UserLogin(req *types.UserLoginReq) (*types.UserLoginResp, error) {
	users, err := l.svcCtx.Registry.LoadApproved(l.ctx)
	if err != nil {
		l.Errorf("读取已审批用户失败: %v", err)
		return nil, err
	}

	for i := range users {
		if users[i].UserId != req.UserId || users[i].Password != req.Password {
			continue
		}
		if users[i].Banned {
			l.Infof("被封禁用户尝试登录: %s", req.UserId)
			return nil, ErrUserBanned
		}

		token, err := l.issueToken(users[i].UserId, users[i].UserType)
		if err != nil {
			return nil, err
		}

		l.Infof("用户登录成功: %s", req.UserId)
		user := users[i]
		return &types.UserLoginResp{
			Success:  true,
			Token:    token,
			UserType: user.UserType,
			UserId:   user.UserId,
			UserData: &user,
		}, nil
	}

	l.Infof("用户登录失败: %s", req.UserId)
	return nil, ErrInvalidCredentials
}

func (l *AuthLogic) issueToken(subject, role string) (string, error) {
	now := time.Now()
	expire := time.Duration(l.svcCtx.Config.Jwt.ExpireHours) * time.Hour

	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(expire).Unix(),
		"iss":  "bluemercantile",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(l.svcCtx.Config.Jwt.Secret))
}
