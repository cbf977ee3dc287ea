package kana

import "strings"

// row is a hiragana group; its katakana twin is derived by code point shift.
type row struct {
	key   string
	label string
	chars string
}

// katakanaOffset is the distance between the hiragana and katakana blocks.
const katakanaOffset = 0x60

var rows = []row{
	{"a", "a i u e o", "あ=a い=i う=u え=e お=o"},
	{"ka", "ka ki ku ke ko", "か=ka き=ki く=ku け=ke こ=ko"},
	{"sa", "sa shi su se so", "さ=sa し=shi,si す=su せ=se そ=so"},
	{"ta", "ta chi tsu te to", "た=ta ち=chi,ti つ=tsu,tu て=te と=to"},
	{"na", "na ni nu ne no", "な=na に=ni ぬ=nu ね=ne の=no"},
	{"ha", "ha hi fu he ho", "は=ha ひ=hi ふ=fu,hu へ=he ほ=ho"},
	{"ma", "ma mi mu me mo", "ま=ma み=mi む=mu め=me も=mo"},
	{"ya", "ya yu yo", "や=ya ゆ=yu よ=yo"},
	{"ra", "ra ri ru re ro", "ら=ra り=ri る=ru れ=re ろ=ro"},
	{"wa", "wa wo n", "わ=wa を=wo,o ん=n"},
	{"ga", "ga gi gu ge go", "が=ga ぎ=gi ぐ=gu げ=ge ご=go"},
	{"za", "za ji zu ze zo", "ざ=za じ=ji,zi ず=zu ぜ=ze ぞ=zo"},
	{"da", "da ji zu de do", "だ=da ぢ=ji,di づ=zu,du で=de ど=do"},
	{"ba", "ba bi bu be bo", "ば=ba び=bi ぶ=bu べ=be ぼ=bo"},
	{"pa", "pa pi pu pe po", "ぱ=pa ぴ=pi ぷ=pu ぺ=pe ぽ=po"},
	{"yoon", "kya sha cha nya hya mya rya", "きゃ=kya きゅ=kyu きょ=kyo しゃ=sha,sya しゅ=shu,syu しょ=sho,syo " +
		"ちゃ=cha,tya ちゅ=chu,tyu ちょ=cho,tyo にゃ=nya にゅ=nyu にょ=nyo ひゃ=hya ひゅ=hyu ひょ=hyo " +
		"みゃ=mya みゅ=myu みょ=myo りゃ=rya りゅ=ryu りょ=ryo"},
	{"yoon-dakuten", "gya ja bya pya", "ぎゃ=gya ぎゅ=gyu ぎょ=gyo じゃ=ja,zya じゅ=ju,zyu じょ=jo,zyo " +
		"びゃ=bya びゅ=byu びょ=byo ぴゃ=pya ぴゅ=pyu ぴょ=pyo"},
}

func (r row) group(script Script) Group {
	prefix := "h_"
	if script == Katakana {
		prefix = "k_"
	}
	g := Group{Key: prefix + r.key, Label: r.label, Script: script}
	for _, field := range strings.Fields(r.chars) {
		char, readings, _ := strings.Cut(field, "=")
		if script == Katakana {
			char = toKatakana(char)
		}
		g.Chars = append(g.Chars, Char{Kana: char, Romaji: strings.Split(readings, ",")})
	}
	return g
}

func toKatakana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x3041 && r <= 0x3096 {
			return r + katakanaOffset
		}
		return r
	}, s)
}
