// Package script builds the pre-paint inline script, its type declarations
// and the build-integration setup result.
package script

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"

	"astro-themes/internal/domain"
)

const mediaType = "text/javascript"

// inlineScript runs before first paint: it reads the stored choice,
// resolves it, writes the root element and publishes the state slot with
// its setter. Template values are JSON literals.
const inlineScript = `(function(){
  var el=document.documentElement;
  var attributes={{.Attributes}};
  var storageKey={{.StorageKey}};
  var defaultTheme={{.DefaultTheme}};
  var forcedTheme={{.ForcedTheme}};
  var themes={{.Themes}};
  var value={{.Value}};
  var enableSystem={{.EnableSystem}};
  var enableColorScheme={{.EnableColorScheme}};
  var disableTransitionOnChange={{.DisableTransitionOnChange}};
  var eventName={{.EventName}};
  var query={{.Query}};

  function mapped(theme){
    return value&&value[theme]?value[theme]:theme;
  }

  function updateDOM(theme){
    for(var i=0;i<attributes.length;i++){
      var attr=attributes[i];
      if(attr==='class'){
        el.classList.remove.apply(el.classList,themes.map(mapped));
        el.classList.add(mapped(theme));
      } else {
        el.setAttribute(attr,mapped(theme));
      }
    }
    if(enableColorScheme&&(theme==='light'||theme==='dark')){
      el.style.colorScheme=theme;
    }
  }

  function pauseTransitions(){
    var css=document.createElement('style');
    css.appendChild(document.createTextNode('*,*::before,*::after{transition:none!important}'));
    document.head.appendChild(css);
    return function(){
      window.getComputedStyle(document.body);
      setTimeout(function(){ document.head.removeChild(css); },1);
    };
  }

  function getSystemTheme(){
    try {
      return window.matchMedia(query).matches?'dark':'light';
    } catch (_) {
      return 'light';
    }
  }

  function read(){
    try {
      return localStorage.getItem(storageKey)||null;
    } catch (_) {
      return null;
    }
  }

  function write(theme){
    try { localStorage.setItem(storageKey,theme); } catch (_) {}
  }

  function resolve(theme,system){
    return enableSystem&&theme==='system'?system:theme;
  }

  var systemTheme=getSystemTheme();
  var theme=forcedTheme||read()||defaultTheme;
  var resolved=forcedTheme||resolve(theme,systemTheme);
  updateDOM(resolved);

  function change(theme,resolved){
    var restore=disableTransitionOnChange?pauseTransitions():null;
    updateDOM(resolved);
    if(restore){ restore(); }
    state.theme=theme;
    state.resolvedTheme=resolved;
    try {
      window.dispatchEvent(new CustomEvent(eventName,{detail:{theme:theme,resolvedTheme:resolved}}));
    } catch (_) {}
  }

  var state={
    theme:theme,
    resolvedTheme:resolved,
    systemTheme:systemTheme,
    forcedTheme:forcedTheme||undefined,
    themes:themes.slice(),
    setTheme:function(next){
      var t=typeof next==='function'?next(state.theme):next;
      t=t||defaultTheme;
      if(!forcedTheme){ write(t); }
      change(t,resolve(t,state.systemTheme));
    }
  };
  window[{{.Slot}}]=state;

  try {
    var media=window.matchMedia(query);
    var onChange=function(e){
      state.systemTheme=e.matches?'dark':'light';
      if(!enableSystem||state.theme!=='system'||(forcedTheme&&state.theme===forcedTheme)){ return; }
      change(state.theme,state.systemTheme);
    };
    if(media.addEventListener){
      media.addEventListener('change',onChange);
    } else if(media.addListener){
      media.addListener(onChange);
    }
  } catch (_) {}
})();`

var inlineTemplate = template.Must(template.New("inline").Parse(inlineScript))

// Script is the rendered inline script in both forms.
type Script struct {
	Source   string
	Minified string
}

// Render embeds cfg into the inline script and minifies it. The
// configuration is not validated here.
func Render(cfg domain.Config) (Script, error) {
	src, err := Source(cfg)
	if err != nil {
		return Script{}, err
	}
	minified, err := Minify(src)
	if err != nil {
		return Script{}, err
	}
	return Script{Source: src, Minified: minified}, nil
}

// Source renders the readable inline script for cfg.
func Source(cfg domain.Config) (string, error) {
	var forced any
	if cfg.Forced() {
		forced = cfg.ForcedTheme
	}
	attrs := cfg.Attributes
	if attrs == nil {
		attrs = []domain.Attribute{}
	}
	themes := cfg.Themes
	if themes == nil {
		themes = []string{}
	}
	var value any
	if len(cfg.Value) > 0 {
		value = cfg.Value
	}

	fields := map[string]any{
		"Attributes":                attrs,
		"StorageKey":                cfg.StorageKey,
		"DefaultTheme":              cfg.DefaultTheme,
		"ForcedTheme":               forced,
		"Themes":                    themes,
		"Value":                     value,
		"EnableSystem":              cfg.EnableSystem,
		"EnableColorScheme":         cfg.EnableColorScheme,
		"DisableTransitionOnChange": cfg.DisableTransitionOnChange,
		"EventName":                 domain.ChangeEventName,
		"Query":                     domain.DarkSchemeQuery,
		"Slot":                      domain.GlobalStateSlot,
	}
	literals := make(map[string]string, len(fields))
	for name, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", name, err)
		}
		literals[name] = string(b)
	}

	var buf bytes.Buffer
	if err := inlineTemplate.Execute(&buf, literals); err != nil {
		return "", fmt.Errorf("render inline script: %w", err)
	}
	return buf.String(), nil
}

// Minify compresses a rendered script.
func Minify(src string) (string, error) {
	m := minify.New()
	m.AddFunc(mediaType, js.Minify)
	out, err := m.String(mediaType, src)
	if err != nil {
		return "", fmt.Errorf("minify inline script: %w", err)
	}
	return closeSafe.Replace(out), nil
}

// closeSafe keeps string literals from terminating the surrounding
// <script> element once the minifier has unescaped them.
var closeSafe = strings.NewReplacer("</", `<\/`, "<!--", `<\!--`)

// CSPHash returns the Content-Security-Policy source expression that allows
// src as an inline script.
func CSPHash(src string) string {
	sum := sha256.Sum256([]byte(src))
	return "'sha256-" + base64.StdEncoding.EncodeToString(sum[:]) + "'"
}
