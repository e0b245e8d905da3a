package predicate

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/xattr"
	"golang.org/x/text/unicode/norm"

	"github.com/gofind/gofind/internal/dt"
	"github.com/gofind/gofind/internal/fnmatch"
	"github.com/gofind/gofind/internal/visit"
)

// Evaluate implements spec.md §4.C's evaluate(visit, state) -> bool for a
// single primary. Side-effecting kinds call into ctx.Actions(); all
// others are pure tests.
func (p *Primary) Evaluate(ctx Context) (bool, error) {
	v := ctx.Visit()
	switch p.Kind {
	case KTrue:
		return true, nil
	case KFalse:
		return false, nil

	case KName:
		return fnmatch.Match(p.Pattern, v.Basename, fnmatch.Flags{}), nil
	case KIName:
		return fnmatch.Match(foldName(p.Pattern), foldName(v.Basename), fnmatch.Flags{}), nil
	case KPath:
		return fnmatch.Match(p.Pattern, v.Path, fnmatch.Flags{}), nil
	case KIPath:
		return fnmatch.Match(foldName(p.Pattern), foldName(v.Path), fnmatch.Flags{}), nil
	case KRegex:
		return p.Regex.MatchString(v.Path), nil
	case KIRegex:
		return p.Regex.MatchString(strings.ToLower(v.Path)), nil

	case KType:
		return matchTypeBits(v.TypeBits, v.HaveType, p.TypeLetters), nil
	case KXType:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, nil
		}
		return matchTypeMode(fi.Mode(), p.TypeLetters), nil

	case KSize:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		return p.SizeCmp.Matches(sizeInUnits(fi.Size(), p.SizeUnit), p.SizeN), nil

	case KINum:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		ino, ok := inodeOf(fi)
		if !ok {
			return false, nil
		}
		return p.NumCmp.Matches(int64(ino), p.NumN), nil

	case KLinks:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		nlink, ok := nlinkOf(fi)
		if !ok {
			return false, nil
		}
		return p.NumCmp.Matches(int64(nlink), p.NumN), nil

	case KUser:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		uid, ok := uidOf(fi)
		if !ok {
			return false, nil
		}
		u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
		return err == nil && u.Username == p.Pattern, nil

	case KUID:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		uid, ok := uidOf(fi)
		if !ok {
			return false, nil
		}
		return p.NumCmp.Matches(int64(uid), p.NumN), nil

	case KGroup:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		gid, ok := gidOf(fi)
		if !ok {
			return false, nil
		}
		g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
		return err == nil && g.Name == p.Pattern, nil

	case KGID:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		gid, ok := gidOf(fi)
		if !ok {
			return false, nil
		}
		return p.NumCmp.Matches(int64(gid), p.NumN), nil

	case KNoUser:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		uid, ok := uidOf(fi)
		if !ok {
			return false, nil
		}
		_, err = user.LookupId(strconv.FormatUint(uint64(uid), 10))
		return err != nil, nil

	case KNoGroup:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		gid, ok := gidOf(fi)
		if !ok {
			return false, nil
		}
		_, err = user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
		return err != nil, nil

	case KPerm:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		ok, err := matchesPermSpec(fi.Mode(), p.PermSpec)
		if err != nil {
			ctx.Warnf("invalid -perm argument: %v", err)
			return false, nil
		}
		return ok, nil

	case KEmpty:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		if fi.IsDir() {
			return isDirEmpty(v.Path), nil
		}
		return fi.Size() == 0, nil

	case KNewer:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		return fi.ModTime().After(p.TimeRef), nil

	case KNewerXY:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		return timeForLetter(fi, p.NewerXY[0]).After(p.TimeRef), nil

	case KTimeXmin:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		ref := ctx.CurDayStart()
		if p.UseDayStart {
			ref = dt.DayStart(ref)
		}
		age := ref.Sub(timeForLetter(fi, p.RefLetter)).Minutes()
		return p.NumCmp.Matches(int64(age), p.NumN), nil

	case KTimeXtime:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		ref := ctx.CurDayStart()
		if p.UseDayStart {
			ref = dt.DayStart(ref)
		}
		age := int64(ref.Sub(timeForLetter(fi, p.RefLetter)).Hours() / 24)
		return p.NumCmp.Matches(age, p.NumN), nil

	case KUsed:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		days := int64(fi.ModTime().Sub(accessTimeOf(fi)).Hours() / 24)
		return p.NumCmp.Matches(days, p.NumN), nil

	case KLName:
		target, err := os.Readlink(v.Path)
		if err != nil {
			return false, nil
		}
		return fnmatch.Match(p.Pattern, target, fnmatch.Flags{}), nil
	case KILName:
		target, err := os.Readlink(v.Path)
		if err != nil {
			return false, nil
		}
		return fnmatch.Match(foldName(p.Pattern), foldName(target), fnmatch.Flags{}), nil

	case KSameFile:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		other, err := os.Stat(p.Pattern)
		if err != nil {
			return false, nil
		}
		return os.SameFile(fi, other), nil

	case KFSType:
		return fstypeOf(v.Path) == p.Pattern, nil

	case KContext:
		buf, err := xattr.Get(v.Path, "security.selinux")
		if err != nil {
			return false, nil
		}
		return fnmatch.Match(p.Pattern, strings.TrimRight(string(buf), "\x00"), fnmatch.Flags{}), nil

	case KAccessCheck:
		return checkAccess(v.Path, p.AccessBits), nil

	case KQuit:
		ctx.Actions().Quit()
		return true, nil
	case KPrune:
		ctx.Actions().Prune()
		return true, nil

	case KDelete:
		return ctx.Actions().Delete(v)
	case KPrint:
		ctx.Actions().Print(v)
		return true, nil
	case KPrint0:
		ctx.Actions().Print0(v)
		return true, nil
	case KPrintF:
		fi, _ := ctx.EnsureStat()
		return true, ctx.Actions().PrintF(p.Format, v, fi)
	case KFPrint:
		return true, ctx.Actions().FPrint(p.SinkPath, v)
	case KFPrintF:
		fi, _ := ctx.EnsureStat()
		return true, ctx.Actions().FPrintF(p.SinkPath, p.Format, v, fi)
	case KLS:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		return true, ctx.Actions().LS(v, fi)
	case KFLS:
		fi, err := ctx.EnsureStat()
		if err != nil {
			return false, err
		}
		return true, ctx.Actions().FLS(p.SinkPath, v, fi)

	case KExec, KOk, KExecDir, KOkDir:
		return ctx.Actions().Exec(p.Recipe, v)

	default:
		return false, fmt.Errorf("predicate: unhandled kind %d", p.Kind)
	}
}

// Evaluate for Negate: evaluate the child and invert (spec.md P5:
// Negate(Negate(X)) == X falls out of this automatically).
func (u *UnaryOp) Evaluate(ctx Context) (bool, error) {
	r, err := u.Child.(Evaluable).Evaluate(ctx)
	if err != nil {
		return false, err
	}
	return !r, nil
}

// Evaluate for And/Or/Comma implements strict short-circuit semantics
// per spec.md §4.F.
func (b *BinaryOp) Evaluate(ctx Context) (bool, error) {
	left, err := b.Left.(Evaluable).Evaluate(ctx)
	if err != nil {
		return false, err
	}
	switch b.Op {
	case And:
		if !left {
			return false, nil
		}
		return b.Right.(Evaluable).Evaluate(ctx)
	case Or:
		if left {
			return true, nil
		}
		return b.Right.(Evaluable).Evaluate(ctx)
	default: // Comma
		_ = left
		return b.Right.(Evaluable).Evaluate(ctx)
	}
}

func foldName(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

func matchTypeBits(bits visit.TypeBits, have bool, letters []byte) bool {
	if !have {
		return false
	}
	for _, l := range letters {
		if typeBitsMatchLetter(bits, l) {
			return true
		}
	}
	return false
}

func typeBitsMatchLetter(bits visit.TypeBits, l byte) bool {
	switch l {
	case 'f':
		return bits == visit.TypeRegular
	case 'd':
		return bits == visit.TypeDir
	case 'l':
		return bits == visit.TypeSymlink
	case 'p':
		return bits == visit.TypeFIFO
	case 's':
		return bits == visit.TypeSocket
	case 'c':
		return bits == visit.TypeCharDevice
	case 'b':
		return bits == visit.TypeBlockDevice
	default:
		return false
	}
}

func matchTypeMode(mode os.FileMode, letters []byte) bool {
	for _, l := range letters {
		switch l {
		case 'f':
			if mode.IsRegular() {
				return true
			}
		case 'd':
			if mode.IsDir() {
				return true
			}
		case 'l':
			if mode&os.ModeSymlink != 0 {
				return true
			}
		case 'p':
			if mode&os.ModeNamedPipe != 0 {
				return true
			}
		case 's':
			if mode&os.ModeSocket != 0 {
				return true
			}
		case 'c':
			if mode&os.ModeCharDevice != 0 {
				return true
			}
		case 'b':
			if mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0 {
				return true
			}
		}
	}
	return false
}

func sizeInUnits(bytes int64, unit byte) int64 {
	switch unit {
	case 'c':
		return bytes
	case 'w':
		return (bytes + 1) / 2
	case 'k':
		return (bytes + 1023) / 1024
	case 'M':
		return (bytes + 1024*1024 - 1) / (1024 * 1024)
	case 'G':
		return (bytes + 1024*1024*1024 - 1) / (1024 * 1024 * 1024)
	default: // 'b': 512-byte blocks, find's default
		return (bytes + 511) / 512
	}
}

func matchesPermSpec(mode os.FileMode, spec string) (bool, error) {
	return permMatch(mode, spec)
}

func isDirEmpty(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	return err != nil
}

func fstypeOf(path string) string {
	return fstypeHook(path)
}

func checkAccess(path string, bits uint8) bool {
	var mode uint32
	if bits&1 != 0 {
		mode |= 4
	}
	if bits&2 != 0 {
		mode |= 2
	}
	if bits&4 != 0 {
		mode |= 1
	}
	return syscall.Access(path, mode) == nil
}

func accessTimeOf(fi os.FileInfo) time.Time {
	return accessTimeHook(fi)
}

func timeForLetter(fi os.FileInfo, letter byte) time.Time {
	return TimeForLetter(fi, letter)
}

// TimeForLetter resolves one of the a/B/c/m/t timestamp-kind letters used
// by -newerXY and -Xmin/-Xtime to an actual time.Time for fi. 'B' (birth
// time) has no portable representation in Go's os.FileInfo/syscall.Stat_t
// on Linux, so it falls back to mtime.
func TimeForLetter(fi os.FileInfo, letter byte) time.Time {
	switch letter {
	case 'a':
		return accessTimeOf(fi)
	case 'c':
		return changeTimeHook(fi)
	case 'B':
		return fi.ModTime()
	default: // 'm' or unrecognised falls back to mtime
		return fi.ModTime()
	}
}

func inodeOf(fi os.FileInfo) (uint64, bool) {
	return inodeHook(fi)
}

func nlinkOf(fi os.FileInfo) (uint64, bool) {
	return nlinkHook(fi)
}

func uidOf(fi os.FileInfo) (uint32, bool) {
	return uidHook(fi)
}

func gidOf(fi os.FileInfo) (uint32, bool) {
	return gidHook(fi)
}
