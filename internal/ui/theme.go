package ui

// playgroundBehaviorScript wires the theme buttons to the state slot and
// mirrors the stored choice into a cookie so the server can pre-render it.
const playgroundBehaviorScript = `(function(){
  var body=document.body;
  var key=body.getAttribute('data-storage-key')||'theme';

  function slot(){
    return window.__ASTRO_THEMES__;
  }

  function mirror(){
    var stored=null;
    try { stored=localStorage.getItem(key); } catch (_) {}
    if(stored){
      document.cookie=key+'='+encodeURIComponent(stored)+'; path=/; SameSite=Lax';
    }
  }

  function syncPressed(){
    var s=slot();
    if(!s){ return; }
    document.querySelectorAll('[data-set-theme]').forEach(function(b){
      b.setAttribute('aria-pressed', b.getAttribute('data-set-theme')===s.theme ? 'true' : 'false');
    });
  }

  document.addEventListener('click', function(e){
    var t=e.target;
    if(!(t instanceof Element)){ return; }
    var s=slot();
    if(!s){ return; }
    var pick=t.closest('[data-set-theme]');
    if(pick){
      s.setTheme(pick.getAttribute('data-set-theme'));
      return;
    }
    if(t.closest('[data-toggle-theme]')){
      s.setTheme(s.resolvedTheme==='dark'?'light':'dark');
    }
  });

  window.addEventListener('astro-themes:change', function(){
    mirror();
    syncPressed();
  });
  syncPressed();
})();`

// toolbarBehaviorScript drives the dev-toolbar panel. The panel runs in its
// own frame, so it talks to the parent window's state slot.
const toolbarBehaviorScript = `(function(){
  var host=window.parent&&window.parent!==window?window.parent:window;

  function slot(){
    return host.__ASTRO_THEMES__;
  }

  function render(){
    var s=slot();
    var status=document.getElementById('toolbar-status');
    if(!s){
      if(status){ status.textContent='Theme state is not initialized on this page.'; }
      return;
    }
    if(status){
      status.textContent=s.forcedTheme ? 'Forced: '+s.forcedTheme : 'Active: '+s.theme+' ('+s.resolvedTheme+')';
    }
    document.querySelectorAll('[data-set-theme]').forEach(function(b){
      b.disabled=!!s.forcedTheme;
      b.setAttribute('aria-pressed', b.getAttribute('data-set-theme')===s.theme ? 'true' : 'false');
    });
  }

  document.addEventListener('click', function(e){
    var t=e.target;
    if(!(t instanceof Element)){ return; }
    var s=slot();
    if(!s){ return; }
    var pick=t.closest('[data-set-theme]');
    if(pick){
      s.setTheme(pick.getAttribute('data-set-theme'));
    } else if(t.closest('[data-toggle-theme]')){
      s.setTheme(s.resolvedTheme==='dark'?'light':'dark');
    }
    render();
  });

  host.addEventListener('astro-themes:change', render);
  render();
})();`
