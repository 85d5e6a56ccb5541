package usecases

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/classbooker/internal/application/sequencer"
	"github.com/example/classbooker/internal/domain/booking"
)

// Element ids on deportesweb.madrid.es. The site can change them at any time;
// drift shows up as a failed step and a screenshot.
const (
	idLoginUser     = "ContentFixedSection_uLogin_txtIdentificador"
	idLoginPassword = "ContentFixedSection_uLogin_txtContrasena"
	idKeepSession   = "ContentFixedSection_uLogin_chkNoCerrarSesion"
	idLoginButton   = "ContentFixedSection_uLogin_btnLogin"
	idConfirmCart   = "ContentFixedSection_uCarritoConfirmar_btnConfirmCart"

	textCookieAccept = "Acepto"
	textLoginMethod  = "Correo y contraseña"
	textHomeLanding  = "Noticias y eventos deportivos"
	textCenterLanded = "Reserva de clases abiertas"
	textExit         = "Salir"
)

// Plan returns the fixed booking flow for one target calendar day.
func Plan(site booking.Site, target booking.Target, creds booking.Credentials, targetDay int) []sequencer.Step {
	day := strconv.Itoa(targetDay)
	slot := xpathString(target.TimeSlot)

	return []sequencer.Step{
		{Name: "open login page", Action: sequencer.Navigate, Value: site.LoginURL},
		{
			Name:     "accept cookies",
			Locator:  sequencer.XPath(containsText("*", textCookieAccept)),
			Ready:    sequencer.Clickable,
			Action:   sequencer.Click,
			Timeout:  sequencer.ShortWait,
			Optional: true,
		},
		{Name: "choose email login", Locator: sequencer.XPath(containsText("*", textLoginMethod)), Ready: sequencer.Clickable, Action: sequencer.Click},
		{Name: "type username", Locator: sequencer.ID(idLoginUser), Ready: sequencer.Present, Action: sequencer.Input, Value: creds.Username},
		{Name: "type password", Locator: sequencer.ID(idLoginPassword), Ready: sequencer.Present, Action: sequencer.Input, Value: creds.Password},
		{Name: "keep session open", Locator: sequencer.ID(idKeepSession), Action: sequencer.EnsureSelected},
		{Name: "submit login", Locator: sequencer.ID(idLoginButton), Ready: sequencer.Clickable, Action: sequencer.Click},

		{Name: "open home page", Action: sequencer.Navigate, Value: site.HomeURL},
		{Name: "wait for home", Locator: sequencer.XPath(containsText("h2", textHomeLanding)), Ready: sequencer.Present, Action: sequencer.Await},
		{Name: "select center", Locator: sequencer.XPath(articleContaining(target.Center)), Ready: sequencer.Clickable, Action: sequencer.Click},
		{Name: "wait for center", Locator: sequencer.XPath(containsText("h2", textCenterLanded)), Ready: sequencer.Present, Action: sequencer.Await},
		{Name: "select activity", Locator: sequencer.XPath(articleContaining(target.Activity)), Action: sequencer.ScrollClick},

		{
			Name:    "select day " + day,
			Locator: sequencer.XPath(fmt.Sprintf("//td[text()=%s and not(contains(@class, 'disabled'))]", xpathString(day))),
			Ready:   sequencer.Clickable,
			Action:  sequencer.Click,
		},
		{
			Name:    "select slot " + target.TimeSlot,
			Locator: sequencer.XPath(fmt.Sprintf("//li[.//h4[text()=%s]] | //li[.//h4[starts-with(text(),%s)]]", slot, slot)),
			Action:  sequencer.ScrollClick,
		},
		{Name: "confirm cart", Locator: sequencer.ID(idConfirmCart), Action: sequencer.ScrollClick},
		{Name: "leave confirmation", Locator: sequencer.XPath(containsText("a", textExit)), Ready: sequencer.Clickable, Action: sequencer.Click},
	}
}

func containsText(tag, text string) string {
	return fmt.Sprintf("//%s[contains(text(), %s)]", tag, xpathString(text))
}

func articleContaining(text string) string {
	return fmt.Sprintf("//article[contains(., %s)]", xpathString(text))
}

// xpathString quotes s as an XPath 1.0 string literal. XPath has no escapes, so
// values holding both quote kinds are built with concat().
func xpathString(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}
