package cli

import (
	"context"
	"fmt"
	"time"

	"bilicred/internal/common"
	"bilicred/internal/session"
	"bilicred/internal/user"
)

// Whoami prints the profile behind the stored credential.
func (a *App) Whoami(ctx context.Context) error {
	sess, err := a.loggedInSession(ctx)
	if err != nil {
		return err
	}

	info, err := user.GetMyInfo(ctx, sess)
	if err != nil {
		return err
	}

	a.printField("Name", info.Uname)
	a.printField("Mid", fmt.Sprintf("%d", info.Mid))
	a.printField("User ID", info.UserID)
	a.printField("Rank", info.Rank)
	if info.Sign != "" {
		a.printField("Bio", info.Sign)
	}
	return nil
}

// Vip prints the subscription status behind the stored credential.
func (a *App) Vip(ctx context.Context) error {
	sess, err := a.loggedInSession(ctx)
	if err != nil {
		return err
	}

	info, err := user.GetVipInfo(ctx, sess)
	if err != nil {
		return err
	}

	a.printField("Type", vipTypeName(info.VipType))
	if info.VipStatus == 1 {
		a.printField("Status", "active")
		a.printField("Due date", time.UnixMilli(info.VipDueDate).In(serviceTZ).Format("2006-01-02"))
	} else {
		warnColor.Fprintln(a.out, "Subscription inactive.")
	}
	return nil
}

// Due dates come as midnights in the service's home timezone; printing
// them anywhere else shifts the date by a day.
var serviceTZ = time.FixedZone("UTC+8", 8*60*60)

// loggedInSession builds a session carrying the stored cookies.
func (a *App) loggedInSession(ctx context.Context) (*session.Session, error) {
	cred, passphrase, err := a.loadCredential()
	if err != nil {
		return nil, err
	}
	common.WipeByteArray(passphrase)

	sess, err := a.newSession()
	if err != nil {
		return nil, err
	}
	if err := sess.RestoreCookies(cred.Cookies); err != nil {
		return nil, err
	}
	return sess, nil
}

func (a *App) printField(label, value string) {
	labelColor.Fprintf(a.out, "%-10s", label+":")
	fmt.Fprintln(a.out, " "+value)
}

func vipTypeName(t int64) string {
	switch t {
	case 0:
		return "none"
	case 1:
		return "monthly"
	case 2:
		return "annual"
	default:
		return fmt.Sprintf("type %d", t)
	}
}
