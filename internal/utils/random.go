package utils

import (
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateAccountNameFromChineseName 生成形如 WangWei.1234 的账号名
func GenerateAccountNameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	accountName := ""

	for _, py := range pinyinArray {
		if py == "" {
			continue
		}
		accountName += strings.ToUpper(py[:1]) + py[1:]
	}

	accountName += "."
	for i := 0; i < 4; i++ {
		accountName += string(digits[rand.Intn(len(digits))])
	}

	return accountName
}

// GenerateRandomRoles 随机生成 1 到 3 个报名的位置，大约一半的玩家只打输出
func GenerateRandomRoles(squadType domain.SquadType) []string {
	if len(squadType.SpecialRoles) == 0 || rand.Intn(2) == 0 {
		return []string{domain.RoleDPS}
	}

	candidates := make([]string, len(squadType.SpecialRoles))
	copy(candidates, squadType.SpecialRoles)
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	n := rand.Intn(min(3, len(candidates))) + 1
	roles := candidates[:n]
	if rand.Intn(2) == 0 {
		roles = append(roles, domain.RoleDPS)
	}
	return roles
}

func GenerateRandomPlayer(squadType domain.SquadType, emailDomainName string) *domain.Player {
	fullName := GenerateRandomChineseName()
	accountName := GenerateAccountNameFromChineseName(fullName)

	return &domain.Player{
		AccountName: accountName,
		DiscordName: strings.ToLower(strings.Split(accountName, ".")[0]),
		Email:       strings.ToLower(strings.ReplaceAll(accountName, ".", "")) + "@" + emailDomainName,
		Roles:       GenerateRandomRoles(squadType),
	}
}
